package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/pkg/extension"
	"golang.org/x/text/cases"
)

// Request describes one command invocation.
type Request struct {
	ExtensionName string
	Command       string
	Parameters    any
	Sink          extension.EventSink
}

// Dispatch runs req.Command on the first instance in exts. The checks run in
// a fixed order: no instances (NoCompatibleExtension), blank command
// (NoCommandSpecified), unknown command (CommandNotFound). A failure inside
// Execute is returned as ExecutionFailed wrapping the extension's error.
func Dispatch(ctx context.Context, exts []extension.Extension, req Request) (extension.ExecutionOption, error) {
	if len(exts) == 0 {
		return extension.ExecutionOption{}, outcome.New(outcome.NoCompatibleExtension,
			"No compatible versions found for extension '%s'.", req.ExtensionName)
	}
	ext := exts[0]

	if strings.TrimSpace(req.Command) == "" {
		return extension.ExecutionOption{}, outcome.New(outcome.NoCommandSpecified,
			"No command specified. Use --command <command>.")
	}

	option, ok := FindOption(ext.ExecutionOptions(), req.Command)
	if !ok {
		return extension.ExecutionOption{}, outcome.New(outcome.CommandNotFound,
			"Command '%s' not found in extension '%s'.", req.Command, req.ExtensionName)
	}

	if err := execute(ctx, ext, option, req.Parameters, req.Sink); err != nil {
		return option, outcome.Wrap(outcome.ExecutionFailed, err, "Command '%s' failed", option.Name)
	}
	return option, nil
}

// FindOption returns the first option whose name equals command under
// Unicode case folding.
func FindOption(options []extension.ExecutionOption, command string) (extension.ExecutionOption, bool) {
	folder := cases.Fold()
	want := folder.String(command)
	for _, opt := range options {
		if folder.String(opt.Name) == want {
			return opt, true
		}
	}
	return extension.ExecutionOption{}, false
}

func execute(ctx context.Context, ext extension.Extension, option extension.ExecutionOption, params any, sink extension.EventSink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if sink == nil {
		sink = func(extension.Event) {}
	}
	return ext.Execute(ctx, option, params, sink)
}
