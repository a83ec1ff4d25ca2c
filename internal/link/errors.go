package link

import (
	"errors"
	"fmt"
)

// ErrLinkUnsupported is returned when the filesystem cannot create links.
var ErrLinkUnsupported = errors.New("symbolic links not supported by filesystem")

// LinkError records a planning or link-creation failure for one file.
type LinkError struct {
	Source string
	Target string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s -> %s: %v", e.Source, e.Target, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
