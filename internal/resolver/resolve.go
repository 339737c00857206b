package resolver

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/internal/version"
)

// Option configures Resolve.
type Option func(*options)

type options struct {
	constraint *semver.Constraints
	logger     *log.Logger
}

// WithConstraint restricts selection to versions satisfying c.
func WithConstraint(c *semver.Constraints) Option {
	return func(o *options) {
		o.constraint = c
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Resolve finds the highest valid version directory of extensionName under
// root. Failures are classified as RootNotFound, ExtensionNotFound,
// CompiledDirMissing or NoValidVersions, checked in that order.
func Resolve(root, extensionName string, opts ...Option) (*Resolution, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if !isDir(root) {
		return nil, outcome.New(outcome.RootNotFound, "Extensions directory '%s' not found.", root)
	}

	extDir := filepath.Join(root, extensionName)
	if !validName(extensionName) || !isDir(extDir) {
		return nil, outcome.New(outcome.ExtensionNotFound, "Extension directory '%s' not found.", extDir)
	}

	compiledDir := filepath.Join(extDir, CompiledDir)
	if !isDir(compiledDir) {
		return nil, outcome.New(outcome.CompiledDirMissing,
			"Compiled directory '%s' not found for extension '%s'.", compiledDir, extensionName)
	}

	candidates, err := ListCandidates(compiledDir)
	if err != nil {
		return nil, outcome.Wrap(outcome.CompiledDirMissing, err,
			"Compiled directory '%s' could not be read for extension '%s'", compiledDir, extensionName)
	}

	eligible := candidates
	if o.constraint != nil {
		eligible = Filter(candidates, o.constraint)
	}

	selected, ok := SelectHighest(eligible)
	if !ok {
		if o.constraint != nil && len(candidates) > 0 {
			return nil, outcome.New(outcome.NoValidVersions,
				"No versions of extension '%s' satisfy '%s'.", extensionName, o.constraint)
		}
		return nil, outcome.New(outcome.NoValidVersions, "No valid versions found for extension '%s'.", extensionName)
	}

	if o.logger != nil {
		o.logger.Debug("resolved extension version",
			"extension", extensionName, "version", selected.Version, "candidates", len(candidates))
	}

	return &Resolution{
		ExtensionName: extensionName,
		ExtensionDir:  extDir,
		CompiledDir:   compiledDir,
		Selected:      selected,
		Candidates:    candidates,
	}, nil
}

// ListCandidates returns the immediate subdirectories of compiledDir whose
// names parse as versions, in lexical name order. Files and directories with
// other names are skipped.
func ListCandidates(compiledDir string) ([]Candidate, error) {
	entries, err := os.ReadDir(compiledDir)
	if err != nil {
		return nil, err
	}

	var result []Candidate
	for _, entry := range entries {
		if !entryIsDir(compiledDir, entry) {
			continue
		}
		v, ok := version.Parse(entry.Name())
		if !ok {
			continue
		}
		result = append(result, Candidate{
			Path:    filepath.Join(compiledDir, entry.Name()),
			Version: v,
		})
	}
	return result, nil
}

// Filter returns the candidates whose version satisfies c.
func Filter(candidates []Candidate, c *semver.Constraints) []Candidate {
	var result []Candidate
	for _, cand := range candidates {
		if cand.Version.Satisfies(c) {
			result = append(result, cand)
		}
	}
	return result
}

// SelectHighest returns the candidate with the highest version. When several
// candidates compare equal (1.2 and 1.2.0) the earliest one in the slice wins,
// which for ListCandidates output is the lexically smallest directory name.
func SelectHighest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Version.Compare(best.Version) > 0 {
			best = c
		}
	}
	return best, true
}

// validName rejects names that would leave the extensions root.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// entryIsDir reports whether entry is a directory, following symlinks.
func entryIsDir(parent string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink != 0 {
		return isDir(filepath.Join(parent, entry.Name()))
	}
	return entry.IsDir()
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
