package extension

// Contract names a capability a registered type declares.
type Contract string

// ContractExtension is the contract the host loads. A registration is only
// eligible when this is its first declared contract.
const ContractExtension Contract = "plugfy.extension/v1"

// DiscoverySymbol is the exported symbol a Go plugin module must provide.
// It may be a Discovery function or a []Registration variable.
const DiscoverySymbol = "Extensions"

// Factory builds an extension instance from the shared host context.
type Factory func(ctx Context) (Extension, error)

// Registration describes one extension type exported by a module.
type Registration struct {
	// Name identifies the type in logs and failure reports.
	Name string
	// Contracts lists the declared contracts in declaration order.
	Contracts []Contract
	// New instantiates the type.
	New Factory
}

// Discovery is the module entry point returning the module's registrations.
type Discovery func() []Registration

// Register returns a Registration whose only contract is ContractExtension.
func Register(name string, factory Factory) Registration {
	return Registration{
		Name:      name,
		Contracts: []Contract{ContractExtension},
		New:       factory,
	}
}

// Qualifies reports whether the registration declares ContractExtension in
// its first contract slot. Types that implement the contract in a later slot
// are not eligible.
func (r Registration) Qualifies() bool {
	return len(r.Contracts) > 0 && r.Contracts[0] == ContractExtension && r.New != nil
}
