package main

import (
	"fmt"

	"github.com/spf13/cobra"

	zerrors "github.com/vango-dev/zvue/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Explain an error code",
		Long: `Explain prints the category and description of an error code.
Without an argument it lists every code.

Examples:
  zvue explain
  zvue explain Z002`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range zerrors.GetAllCodes() {
					t, _ := zerrors.GetTemplate(code)
					fmt.Fprintf(out, "%s  %-8s %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			t, ok := zerrors.GetTemplate(args[0])
			if !ok {
				return zerrors.New("Z040").
					WithDetail(fmt.Sprintf("unknown error code %q", args[0])).
					WithSuggestion("Run zvue explain to list codes")
			}
			fmt.Fprintf(out, "%s: %s (%s)\n\n", args[0], t.Message, t.Category)
			fmt.Fprintf(out, "  %s\n", t.Detail)
			return nil
		},
	}
}
