package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/zvue/internal/config"
	zerrors "github.com/vango-dev/zvue/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┬┬ ┬┌─┐
  ┌─┘└┐┌┘│ │├┤
  └─┘ └┘ └─┘└─┘
`

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		asJSON, _ := root.PersistentFlags().GetBool("json-errors")
		reportError(os.Stderr, err, asJSON)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel   string
		jsonErrors bool
	)

	rootCmd := &cobra.Command{
		Use:   "zvue",
		Short: "Reactive data binding for HTML fragments",
		Long: `zvue binds an HTML fragment to a data document.

Text runs written as {{key}} and elements marked with z-text or z-html
are re-rendered whenever the bound key is written. Render once from the
command line, or serve the fragment and push updates to browsers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonErrors, "json-errors", false, "Print errors as JSON")

	rootCmd.AddCommand(
		renderCmd(&logLevel),
		serveCmd(&logLevel),
		versionCmd(),
		explainCmd(),
	)

	return rootCmd
}

// newLogger builds the CLI logger. An empty name falls back to def.
func newLogger(w io.Writer, name, def string) (*slog.Logger, error) {
	if name == "" {
		name = def
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return nil, zerrors.New("Z011").WithDetail("--log-level").Wrap(err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// reportError prints err to w as a coded error. Errors without a code are
// reported as Z040.
func reportError(w io.Writer, err error, asJSON bool) {
	ze := zerrors.FromError(err, "Z040")
	if asJSON {
		fmt.Fprintln(w, ze.FormatJSON())
		return
	}
	if colorTerminal(w) {
		zerrors.EnableColors()
	} else {
		zerrors.DisableColors()
	}
	fmt.Fprint(w, ze.Format())
}

// colorTerminal reports whether w is a terminal and NO_COLOR is unset.
func colorTerminal(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printBanner prints the zvue ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
