package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/diwise/api-idresolver/internal/pkg/domain"
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a url to external identifiers",
		Long: `Resolve a url to the external identifiers it carries and print the result as JSON.

Examples:
  idresolve resolve https://arxiv.org/abs/2310.06825
  idresolve resolve "https://openreview.net/forum?id=et5l9qPUhm" --property P8968`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := a.newResolver()
			if err != nil {
				return err
			}

			result, err := r.Resolve(cmd.Context(), args[0], property)
			if err != nil {
				return err
			}

			return writeResult(a.out, result)
		},
	}

	cmd.Flags().StringVarP(&property, "property", "p", "", "identifier property to try in addition to the discovered ones, e.g. P8968")

	return cmd
}

func writeResult(out io.Writer, result *domain.ResolutionResult) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = fmt.Fprintln(out, string(b))
	return err
}
