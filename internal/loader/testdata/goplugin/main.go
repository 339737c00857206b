// Command goplugin is a sample extension built with -buildmode=plugin by the
// loader tests.
package main

import (
	"context"
	"fmt"

	"github.com/plugfy/plugfy/pkg/extension"
)

type sample struct {
	version string
}

func (s *sample) ExecutionOptions() []extension.ExecutionOption {
	return []extension.ExecutionOption{{Name: "run", Description: "Run the sample"}}
}

func (s *sample) Execute(_ context.Context, opt extension.ExecutionOption, _ any, emit extension.EventSink) error {
	emit(extension.Event{Type: "progress", Message: fmt.Sprintf("%s@%s", opt.Name, s.version)})
	return nil
}

// Extensions is looked up by the host.
func Extensions() []extension.Registration {
	return []extension.Registration{
		extension.Register("sample", func(ctx extension.Context) (extension.Extension, error) {
			return &sample{version: ctx.Version}, nil
		}),
	}
}
