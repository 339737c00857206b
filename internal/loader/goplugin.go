package loader

import (
	"fmt"
	"plugin"

	"github.com/plugfy/plugfy/pkg/extension"
)

// PluginOpener opens Go plugins built with -buildmode=plugin. A plugin must
// export the symbol extension.DiscoverySymbol as either
//
//	func Extensions() []extension.Registration
//	var Extensions []extension.Registration
//
// Plugins cannot be unloaded; their modules have no closer.
type PluginOpener struct{}

// Open loads the plugin at path and reads its registrations.
func (PluginOpener) Open(path string) (*Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plugin: %w", err)
	}
	sym, err := p.Lookup(extension.DiscoverySymbol)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", extension.DiscoverySymbol, err)
	}
	regs, err := registrationsFromSymbol(sym)
	if err != nil {
		return nil, err
	}
	return NewModule(path, regs, nil), nil
}

// registrationsFromSymbol accepts the shapes a plugin may export the
// discovery entry point in.
func registrationsFromSymbol(sym plugin.Symbol) ([]extension.Registration, error) {
	switch v := sym.(type) {
	case func() []extension.Registration:
		return v(), nil
	case extension.Discovery:
		return v(), nil
	case *extension.Discovery:
		if v == nil || *v == nil {
			return nil, fmt.Errorf("%s is nil", extension.DiscoverySymbol)
		}
		return (*v)(), nil
	case *[]extension.Registration:
		if v == nil {
			return nil, fmt.Errorf("%s is nil", extension.DiscoverySymbol)
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%s has unsupported type %T", extension.DiscoverySymbol, sym)
	}
}
