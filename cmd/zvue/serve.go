package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/zvue/internal/config"
	zerrors "github.com/vango-dev/zvue/internal/errors"
	"github.com/vango-dev/zvue/internal/source"
	"github.com/vango-dev/zvue/internal/watch"
	"github.com/vango-dev/zvue/pkg/live"
)

func serveCmd(logLevel *string) *cobra.Command {
	var (
		configPath string
		addr       string
		watchFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a template and push updates to browsers",
		Long: `Serve compiles the template from zvue.json and serves it over HTTP.

Browsers receive a patch over WebSocket for every binding that changes.
Values are written with PUT /data/{key}.

Examples:
  zvue serve
  zvue serve --config site/zvue.json --addr 0.0.0.0:8080
  zvue serve --watch
  ZVUE_STRICT=true zvue serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if watchFlag {
				cfg.Watch = true
			}
			if *logLevel != "" {
				cfg.LogLevel = *logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, config.DefaultLogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cmd, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to zvue.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from zvue.json)")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Push changes to the data file to browsers")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	opts := appOptions{
		Template: cfg.TemplatePath(),
		Data:     cfg.DataPath(),
		Strict:   cfg.Strict,
		Isolate:  cfg.Isolate,
		S3:       cfg.S3,
		Logger:   logger,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsNamespace = cfg.Metrics.Namespace
	}

	a, err := buildApp(ctx, opts)
	if err != nil {
		return err
	}

	serverOpts := []live.Option{
		live.WithLogger(logger.With("component", "live")),
		live.WithShutdownTimeout(cfg.ShutdownDuration()),
	}
	if a.metrics != nil {
		serverOpts = append(serverOpts, live.WithMetrics(a.metrics), live.WithGatherer(a.registry))
	}
	srv := live.New(a.view, serverOpts...)

	if cfg.Watch {
		if err := watchData(ctx, cfg.DataPath(), srv, logger); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	printBanner(out)
	success(out, "Serving %s", cfg.TemplatePath())
	info(out, "http://%s", cfg.Addr)

	if err := srv.Run(ctx, cfg.Addr); err != nil {
		return zerrors.New("Z030").Wrap(err)
	}
	return nil
}

// watchData writes changes to the data file through srv until ctx is done.
func watchData(ctx context.Context, path string, srv *live.Server, logger *slog.Logger) error {
	if path == "" || strings.HasPrefix(path, "s3://") {
		return zerrors.New("Z011").
			WithDetail("watch needs a local data file").
			WithSuggestion("Set data to a file path or disable watch")
	}

	loader := source.New(nil, logger)
	w := watch.New(watch.Config{Paths: []string{path}, Logger: logger})
	w.OnChange(func(p string) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("binding update panicked", "path", p, "panic", r)
			}
		}()

		data, err := loader.LoadData(ctx, p)
		if err != nil {
			logger.Warn("reload data failed", "path", p, "error", zerrors.FromError(err, "Z020").FormatCompact())
			return
		}
		keys, err := srv.Apply(data)
		if err != nil {
			logger.Warn("apply data failed", "path", p, "error", err)
		}
		if len(keys) > 0 {
			logger.Info("data reloaded", "path", p, "keys", keys)
		}
	})

	go w.Run(ctx)
	return nil
}
