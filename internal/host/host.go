package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/plugfy/plugfy/internal/dispatch"
	"github.com/plugfy/plugfy/internal/loader"
	"github.com/plugfy/plugfy/internal/manifest"
	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/internal/relay"
	"github.com/plugfy/plugfy/internal/resolver"
	"github.com/plugfy/plugfy/internal/version"
	"github.com/plugfy/plugfy/pkg/extension"
)

// Request is one invocation of an extension command.
type Request struct {
	ExtensionsPath string
	ExtensionName  string
	Command        string
	Parameters     string   // raw JSON, may be empty
	Overrides      []string // key=value pairs applied on top of Parameters
	Constraint     string   // optional semver range restricting the version
	Settings       map[string]any
}

// Report describes what a run did. It is returned alongside errors so the
// caller can show how far the pipeline got.
type Report struct {
	RunID      string
	Resolution *resolver.Resolution
	Load       *loader.Result
	Option     extension.ExecutionOption
	Events     int
}

// Option configures a Host.
type Option func(*Host)

// WithOutput sets where events and the success line are written.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.out = w
	}
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithLoaderOptions passes options to every Loader the host creates.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(h *Host) {
		h.loaderOpts = append(h.loaderOpts, opts...)
	}
}

// WithRunID replaces the run identifier generator.
func WithRunID(fn func() string) Option {
	return func(h *Host) {
		h.newRunID = fn
	}
}

// Host executes extension commands.
type Host struct {
	out        io.Writer
	logger     *log.Logger
	loaderOpts []loader.Option
	newRunID   func() string
}

// New creates a Host writing to stdout.
func New(opts ...Option) *Host {
	h := &Host{
		out:      os.Stdout,
		logger:   log.New(io.Discard),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run resolves the highest version of the extension, loads it, runs the
// command and relays its events. Every failure is an *outcome.Error; a panic
// anywhere in the pipeline is reported as outcome.Internal.
func (h *Host) Run(ctx context.Context, req Request) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Debug("recovered panic", "panic", r, "stack", string(debug.Stack()))
			if report == nil {
				report = &Report{}
			}
			err = outcome.New(outcome.Internal, "Error: %v", r)
		}
	}()
	report = &Report{RunID: h.newRunID()}

	params, err := parseParameters(req)
	if err != nil {
		return report, err
	}

	res, err := h.resolve(req)
	if err != nil {
		return report, err
	}
	report.Resolution = res

	l := loader.New(h.loaderOptions()...)
	defer h.closeLoader(l)

	report.Load = l.Load(res.Selected.Path, h.extensionContext(report.RunID, req, res))

	r := relay.New(h.out, h.logger)
	option, err := dispatch.Dispatch(ctx, report.Load.Extensions(), dispatch.Request{
		ExtensionName: req.ExtensionName,
		Command:       req.Command,
		Parameters:    params,
		Sink:          r.Sink(),
	})
	report.Option = option
	report.Events = r.Count()
	if err != nil {
		return report, err
	}

	h.logger.Debug("command finished", "command", option.Name, "events", report.Events)
	fmt.Fprintf(h.out, "Command '%s' executed successfully.\n", req.Command)
	return report, nil
}

// Description is what Describe learned about an installed extension.
type Description struct {
	Resolution *resolver.Resolution
	Manifest   *manifest.Manifest
	Instances  []string
	Options    []extension.ExecutionOption // options of the instance Run would use
	Failures   []loader.Failure
	Skipped    []string
}

// Describe resolves and loads an extension without running anything.
func (h *Host) Describe(_ context.Context, req Request) (*Description, error) {
	res, err := h.resolve(req)
	if err != nil {
		return nil, err
	}

	d := &Description{Resolution: res}
	if m, err := manifest.Load(res.ExtensionDir); err != nil {
		h.logger.Warn("ignoring manifest", "err", err)
	} else {
		d.Manifest = m
	}

	l := loader.New(h.loaderOptions()...)
	defer h.closeLoader(l)

	result := l.Load(res.Selected.Path, h.extensionContext(h.newRunID(), req, res))
	d.Failures = result.Failures
	d.Skipped = result.Skipped
	for _, inst := range result.Instances {
		d.Instances = append(d.Instances, inst.Name)
	}
	if len(result.Instances) > 0 {
		d.Options = append(d.Options, result.Instances[0].Extension.ExecutionOptions()...)
	}
	return d, nil
}

func (h *Host) resolve(req Request) (*resolver.Resolution, error) {
	opts := []resolver.Option{resolver.WithLogger(h.logger)}
	if req.Constraint != "" {
		c, err := version.ParseConstraint(req.Constraint)
		if err != nil {
			return nil, outcome.Wrap(outcome.InvalidArguments, err, "Invalid version constraint '%s'", req.Constraint)
		}
		opts = append(opts, resolver.WithConstraint(c))
	}
	return resolver.Resolve(req.ExtensionsPath, req.ExtensionName, opts...)
}

func (h *Host) loaderOptions() []loader.Option {
	return append([]loader.Option{loader.WithLogger(h.logger)}, h.loaderOpts...)
}

func (h *Host) closeLoader(l *loader.Loader) {
	if err := l.Close(); err != nil {
		h.logger.Debug("releasing modules", "err", err)
	}
}

func (h *Host) extensionContext(runID string, req Request, res *resolver.Resolution) extension.Context {
	return extension.Context{
		RunID:          runID,
		ExtensionsPath: req.ExtensionsPath,
		ExtensionName:  req.ExtensionName,
		Version:        res.Selected.Version.String(),
		Dir:            res.Selected.Path,
		Settings:       req.Settings,
		Logger:         h.logger.With("run", runID),
	}
}

func parseParameters(req Request) (any, error) {
	raw, err := dispatch.ApplyOverrides(req.Parameters, req.Overrides)
	if err != nil {
		return nil, err
	}
	return dispatch.ParseParameters(raw)
}
