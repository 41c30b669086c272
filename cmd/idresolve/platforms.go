package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPlatformsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List the known platforms used for the fast path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(registry.Entries(), "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(a.out, string(b))
			return err
		},
	}
}
