package extension

import "context"

// ExecutionOption is one command an extension advertises.
type ExecutionOption struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Event is a progress notification raised by an extension while it executes.
type Event struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventSink receives events synchronously, in the order the extension emits them.
type EventSink func(Event)

// Extension is the capability contract every loadable extension satisfies.
type Extension interface {
	// ExecutionOptions lists the commands this extension supports. Names
	// should be unique ignoring case; the host uses the first match.
	ExecutionOptions() []ExecutionOption

	// Execute runs the given option. Parameters are the decoded JSON payload
	// supplied on the command line (nil when none was given); the extension
	// is responsible for validating their shape.
	Execute(ctx context.Context, option ExecutionOption, parameters any, emit EventSink) error
}
