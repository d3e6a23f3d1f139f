package main

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/vango-dev/zvue/internal/config"
	zerrors "github.com/vango-dev/zvue/internal/errors"
)

func renderCmd(logLevel *string) *cobra.Command {
	var (
		opts       appOptions
		configPath string
		sets       []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template against a data document",
		Long: `Render compiles the template, binds it to the data document and
prints the resulting fragment.

Each --set is applied as a reactive write after compilation, so the
output shows the fragment as it looks after those updates. Values are
parsed as JSON and fall back to plain strings.

Examples:
  zvue render -t page.html -d data.json
  zvue render -t page.html -d data.yaml --set msg=hello --set count=3
  zvue render --config zvue.json --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				if opts.Template == "" {
					opts.Template = cfg.TemplatePath()
				}
				if opts.Data == "" {
					opts.Data = cfg.DataPath()
				}
				opts.Strict = opts.Strict || cfg.Strict
				opts.Isolate = opts.Isolate || cfg.Isolate
				opts.S3 = cfg.S3
			}
			if opts.Template == "" {
				return zerrors.New("Z011").
					WithDetail("no template given").
					WithSuggestion("Pass --template or --config")
			}

			logger, err := newLogger(cmd.ErrOrStderr(), *logLevel, "warn")
			if err != nil {
				return err
			}
			opts.Logger = logger

			a, err := buildApp(cmd.Context(), opts)
			if err != nil {
				return err
			}

			for _, s := range sets {
				key, value, err := parseSet(s)
				if err != nil {
					return err
				}
				if err := a.vm.Set(key, value); err != nil {
					return writeError(key, err)
				}
			}

			out := cmd.OutOrStdout()
			if err := a.view.Render(out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "Template file or s3:// URL")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Data document (JSON or YAML) or s3:// URL")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Read template and data from a zvue.json")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Write key=value after compiling (repeatable)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Reject bindings and writes to unknown keys")
	cmd.Flags().BoolVar(&opts.Isolate, "isolate", false, "Keep updating other bindings when one fails")

	return cmd
}

// parseSet splits key=value. The value is decoded as JSON when it parses,
// otherwise it is kept as a string.
func parseSet(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", nil, zerrors.Newf(zerrors.CategoryRuntime, "invalid --set %q", s).
			WithSuggestion("Use --set key=value")
	}

	var value any
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(raw, &value); err != nil {
		return key, raw, nil
	}
	return key, value, nil
}
