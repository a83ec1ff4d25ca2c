package link

import (
	"errors"
	"io/fs"
	"os"

	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/spf13/afero"
)

// Materializer creates the link of a plan, or only pretends to in preview
// mode.
type Materializer struct {
	fs      afero.Fs
	preview bool
}

// NewMaterializer creates a materializer over fsys.
func NewMaterializer(fsys afero.Fs, preview bool) *Materializer {
	return &Materializer{fs: fsys, preview: preview}
}

// Materialize creates a symbolic link at plan.Target pointing at
// plan.Source. A target that appeared since planning yields Skipped; any
// other failure yields Failed with the cause.
func (m *Materializer) Materialize(plan entry.LinkPlan) (entry.Outcome, error) {
	if m.preview {
		if plan.Existing {
			return entry.Skipped, nil
		}
		return entry.Created, nil
	}

	linker, ok := m.fs.(afero.Linker)
	if !ok {
		return entry.Failed, &LinkError{Source: plan.Source, Target: plan.Target, Err: ErrLinkUnsupported}
	}

	err := linker.SymlinkIfPossible(plan.Source, plan.Target)
	switch {
	case err == nil:
		return entry.Created, nil
	case errors.Is(err, fs.ErrExist):
		return entry.Skipped, nil
	default:
		return entry.Failed, &LinkError{Source: plan.Source, Target: plan.Target, Err: unwrapLinkErr(err)}
	}
}

// unwrapLinkErr drops the *os.LinkError envelope, whose text repeats both
// paths already carried by LinkError.
func unwrapLinkErr(err error) error {
	var le *os.LinkError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err
	}
	return err
}
