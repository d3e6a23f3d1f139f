package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/zvue/internal/config"
	zerrors "github.com/vango-dev/zvue/internal/errors"
	"github.com/vango-dev/zvue/internal/source"
	"github.com/vango-dev/zvue/pkg/compile"
	"github.com/vango-dev/zvue/pkg/instrument"
	"github.com/vango-dev/zvue/pkg/reactive"
)

// appOptions selects the template, data and engine behavior.
type appOptions struct {
	Template string
	Data     string
	Strict   bool
	Isolate  bool

	// MetricsNamespace enables Prometheus metrics when non-empty.
	MetricsNamespace string

	S3     config.S3Config
	Logger *slog.Logger
}

// app is a compiled view with its instrumentation.
type app struct {
	vm       *reactive.VM
	view     *compile.View
	metrics  *instrument.Metrics
	registry *prometheus.Registry
}

// buildApp loads the template and data, observes the data and compiles the
// template against it.
func buildApp(ctx context.Context, opts appOptions) (*app, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var client source.ObjectGetter
	if strings.HasPrefix(opts.Template, "s3://") || strings.HasPrefix(opts.Data, "s3://") {
		client = source.NewS3Client(opts.S3)
	}
	loader := source.New(client, logger)

	tmpl, err := loader.Read(ctx, opts.Template)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if opts.Data != "" {
		data, err = loader.LoadData(ctx, opts.Data)
		if err != nil {
			return nil, err
		}
	}

	a := &app{}
	hooks := instrument.Multi{instrument.NewTracing()}
	if opts.MetricsNamespace != "" {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics = instrument.NewMetrics(
			instrument.WithRegistry(a.registry),
			instrument.WithNamespace(opts.MetricsNamespace),
		)
		hooks = append(hooks, a.metrics)
	}

	a.vm = reactive.New(data,
		reactive.WithLogger(logger.With("component", "reactive")),
		reactive.WithHooks(hooks),
		reactive.WithIsolation(opts.Isolate),
		reactive.WithStrict(opts.Strict),
	)

	a.view, err = compile.New(bytes.NewReader(tmpl), a.vm, compile.WithLogger(logger.With("component", "compile")))
	if err != nil {
		return nil, compileError(err).WithFile(opts.Template)
	}
	return a, nil
}

// compileError maps a compile failure to its error code.
func compileError(err error) *zerrors.ZvueError {
	switch {
	case errors.Is(err, compile.ErrUnknownDirective):
		return zerrors.New("Z002").Wrap(err)
	case errors.Is(err, reactive.ErrUnknownProperty):
		return zerrors.New("Z001").
			Wrap(err).
			WithSuggestion("Add the key to the data document or disable strict mode")
	default:
		return zerrors.New("Z003").Wrap(err)
	}
}

// writeError maps a failed reactive write to its error code.
func writeError(key string, err error) error {
	if errors.Is(err, reactive.ErrUnknownProperty) {
		return zerrors.New("Z001").
			WithDetail("cannot set " + key + ": the data document has no such key").
			Wrap(err)
	}
	return zerrors.Newf(zerrors.CategoryRuntime, "set %s", key).Wrap(err)
}
