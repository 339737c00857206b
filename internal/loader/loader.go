package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/pkg/extension"
)

// Instance is an instantiated extension together with where it came from.
type Instance struct {
	Extension extension.Extension
	Name      string // registration name
	Module    string // module file path
}

// Failure records a module or registration that could not be used.
type Failure struct {
	Path         string
	Registration string // empty for module-level failures
	Err          error  // *outcome.Error of kind ModuleLoadFailed or InstantiationFailed
}

// Result is the outcome of loading one version directory.
type Result struct {
	Dir       string
	Modules   []string // module files that opened successfully
	Instances []Instance
	Failures  []Failure
	Skipped   []string // registrations whose first contract is not the extension contract
}

// Extensions returns the instantiated extensions in load order.
func (r *Result) Extensions() []extension.Extension {
	out := make([]extension.Extension, len(r.Instances))
	for i, inst := range r.Instances {
		out[i] = inst.Extension
	}
	return out
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener registers o for files ending in ext (for example ".so"),
// replacing any opener already registered for it.
func WithOpener(ext string, o Opener) Option {
	return func(l *Loader) {
		l.openers[strings.ToLower(ext)] = o
	}
}

// WithoutDefaultOpeners drops the built-in plugin and Lua openers.
func WithoutDefaultOpeners() Option {
	return func(l *Loader) {
		clear(l.openers)
	}
}

// WithLogger sets the logger used to report isolated failures.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader opens module files and instantiates their extensions. It keeps every
// opened module until Close.
type Loader struct {
	openers map[string]Opener
	logger  *log.Logger
	opened  []*Module
}

// New creates a Loader with the default openers.
func New(opts ...Option) *Loader {
	l := &Loader{
		openers: DefaultOpeners(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load opens every module file directly inside versionDir, in lexical order,
// and instantiates each qualifying registration with ectx. Open and
// instantiation failures are recorded in the result and logged; they never
// abort the scan. An empty result is not an error.
func (l *Loader) Load(versionDir string, ectx extension.Context) *Result {
	res := &Result{Dir: versionDir}

	entries, err := os.ReadDir(versionDir)
	if err != nil {
		res.Failures = append(res.Failures, Failure{
			Path: versionDir,
			Err:  outcome.Wrap(outcome.ModuleLoadFailed, err, "reading version directory %s", versionDir),
		})
		l.logger.Warn("cannot read version directory", "dir", versionDir, "err", err)
		return res
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		opener, ok := l.openers[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(versionDir, entry.Name())
		mod, err := openSafely(opener, path)
		if err != nil {
			res.Failures = append(res.Failures, Failure{
				Path: path,
				Err:  outcome.Wrap(outcome.ModuleLoadFailed, err, "loading module %s", entry.Name()),
			})
			l.logger.Warn("skipping module", "file", entry.Name(), "err", err)
			continue
		}
		l.opened = append(l.opened, mod)
		res.Modules = append(res.Modules, path)

		l.instantiate(res, mod, ectx)
	}

	l.logger.Debug("loaded version directory",
		"dir", versionDir, "modules", len(res.Modules), "instances", len(res.Instances), "failures", len(res.Failures))
	return res
}

func (l *Loader) instantiate(res *Result, mod *Module, ectx extension.Context) {
	for _, reg := range mod.Registrations {
		if !reg.Qualifies() {
			res.Skipped = append(res.Skipped, reg.Name)
			l.logger.Debug("registration does not implement the extension contract",
				"module", filepath.Base(mod.Path), "name", reg.Name)
			continue
		}

		regCtx := ectx
		if ectx.Logger != nil {
			regCtx.Logger = ectx.Logger.With("extension", reg.Name)
		}

		ext, err := newSafely(reg, regCtx)
		if err != nil {
			res.Failures = append(res.Failures, Failure{
				Path:         mod.Path,
				Registration: reg.Name,
				Err:          outcome.Wrap(outcome.InstantiationFailed, err, "instantiating %s", reg.Name),
			})
			l.logger.Warn("skipping extension", "module", filepath.Base(mod.Path), "name", reg.Name, "err", err)
			continue
		}
		res.Instances = append(res.Instances, Instance{Extension: ext, Name: reg.Name, Module: mod.Path})
	}
}

// Close releases every module opened by Load.
func (l *Loader) Close() error {
	var errs []error
	for _, mod := range l.opened {
		if err := mod.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", mod.Path, err))
		}
	}
	l.opened = nil
	return errors.Join(errs...)
}

func openSafely(o Opener, path string) (mod *Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			mod, err = nil, fmt.Errorf("panic while opening: %v", r)
		}
	}()
	mod, err = o.Open(path)
	if err == nil && mod == nil {
		err = errors.New("opener returned no module")
	}
	return mod, err
}

func newSafely(reg extension.Registration, ectx extension.Context) (ext extension.Extension, err error) {
	defer func() {
		if r := recover(); r != nil {
			ext, err = nil, fmt.Errorf("panic in constructor: %v", r)
		}
	}()
	ext, err = reg.New(ectx)
	if err == nil && ext == nil {
		err = errors.New("constructor returned no extension")
	}
	return ext, err
}
