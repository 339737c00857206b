package loader

import (
	"fmt"
	"path/filepath"

	"github.com/plugfy/plugfy/pkg/extension"
)

// Module is an opened module file and the registrations it exports.
type Module struct {
	Path          string
	Registrations []extension.Registration

	closer func() error
}

// NewModule returns a Module. closer, when non-nil, is called once by
// Loader.Close to release resources held by the module.
func NewModule(path string, regs []extension.Registration, closer func() error) *Module {
	return &Module{Path: path, Registrations: regs, closer: closer}
}

// Close releases the module. It is safe to call more than once.
func (m *Module) Close() error {
	if m == nil || m.closer == nil {
		return nil
	}
	closer := m.closer
	m.closer = nil
	return closer()
}

// Opener opens one kind of module file.
type Opener interface {
	Open(path string) (*Module, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (*Module, error)

func (f OpenerFunc) Open(path string) (*Module, error) {
	return f(path)
}

// Supported module file extensions.
const (
	ExtPlugin = ".so"
	ExtLua    = ".lua"
)

// DefaultOpeners returns the openers registered by New when no WithOpener
// option overrides them.
func DefaultOpeners() map[string]Opener {
	return map[string]Opener{
		ExtPlugin: PluginOpener{},
		ExtLua:    LuaOpener{},
	}
}

// StaticOpener serves registrations from memory, keyed by module file base
// name. It stands in for real module files in tests.
type StaticOpener struct {
	Modules map[string][]extension.Registration
	Errors  map[string]error
}

// Open returns the registrations configured for the base name of path.
func (s StaticOpener) Open(path string) (*Module, error) {
	base := filepath.Base(path)
	if err, ok := s.Errors[base]; ok {
		return nil, err
	}
	regs, ok := s.Modules[base]
	if !ok {
		return nil, fmt.Errorf("%s is not a known module", base)
	}
	return NewModule(path, regs, nil), nil
}
