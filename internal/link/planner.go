// Package link plans and creates the symbolic links of the output tree.
package link

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/michaelscutari/symsort/internal/category"
	"github.com/michaelscutari/symsort/internal/entry"
	"github.com/spf13/afero"
)

const dirCacheSize = 4096

// Planner hands out collision-free target paths below an output root.
// It is safe for concurrent use: reservation and the existence check happen
// under one lock, so two callers never receive the same target.
type Planner struct {
	fs         afero.Fs
	outputRoot string
	preview    bool

	mu      sync.Mutex
	claimed map[string]struct{}

	dirs *lru.Cache[string, struct{}]
}

// NewPlanner creates a planner over fsys. In preview mode it never creates
// directories.
func NewPlanner(fsys afero.Fs, outputRoot string, preview bool) *Planner {
	dirs, _ := lru.New[string, struct{}](dirCacheSize)
	return &Planner{
		fs:         fsys,
		outputRoot: filepath.Clean(outputRoot),
		preview:    preview,
		claimed:    make(map[string]struct{}),
		dirs:       dirs,
	}
}

// Plan reserves the target for source under <output>/<category>/<namespace>.
// If the canonical name is taken on disk or by an earlier plan of this run,
// the stem gets a _1, _2, ... suffix. A target that already links to source
// is reused and marked Existing.
func (p *Planner) Plan(c category.Category, source string) (entry.LinkPlan, error) {
	ns := Namespace(source)
	dir := filepath.Join(p.outputRoot, string(c), ns)
	plan := entry.LinkPlan{Source: source, Category: c, Namespace: ns}

	if !p.preview {
		if err := p.ensureDir(dir); err != nil {
			return plan, &LinkError{Source: source, Target: dir, Err: err}
		}
	}

	name := filepath.Base(source)
	stem, ext := splitName(name)

	p.mu.Lock()
	defer p.mu.Unlock()

	for counter := 0; ; counter++ {
		candidate := filepath.Join(dir, name)
		if counter > 0 {
			candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(counter)+ext)
		}
		if _, taken := p.claimed[candidate]; taken {
			continue
		}

		state, err := p.inspect(candidate, source)
		if err != nil {
			return plan, &LinkError{Source: source, Target: candidate, Err: err}
		}
		if state == occupied {
			continue
		}

		p.claimed[candidate] = struct{}{}
		plan.Target = candidate
		plan.Existing = state == linkedHere
		return plan, nil
	}
}

// Claimed returns how many targets have been reserved.
func (p *Planner) Claimed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.claimed)
}

type targetState int

const (
	free targetState = iota
	occupied
	linkedHere
)

func (p *Planner) inspect(target, source string) (targetState, error) {
	info, err := p.lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return free, nil
	}
	if err != nil {
		return occupied, fmt.Errorf("inspect target: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return occupied, nil
	}
	if reader, ok := p.fs.(afero.LinkReader); ok {
		if dest, err := reader.ReadlinkIfPossible(target); err == nil && filepath.Clean(dest) == filepath.Clean(source) {
			return linkedHere, nil
		}
	}
	return occupied, nil
}

func (p *Planner) lstat(name string) (fs.FileInfo, error) {
	if l, ok := p.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return p.fs.Stat(name)
}

func (p *Planner) ensureDir(dir string) error {
	if p.dirs.Contains(dir) {
		return nil
	}
	// MkdirAll tolerates a concurrent creator of the same directory.
	if err := p.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	p.dirs.Add(dir, struct{}{})
	return nil
}
