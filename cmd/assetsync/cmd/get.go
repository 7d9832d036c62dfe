package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
	"github.com/northfleet/assetsync/pkg/assets"
)

func newGetCommand(a *app.App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "get <object-id>",
		Short:   "Fetch a single asset and show its parsed record",
		Example: `  assetsync get OBJ-1234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.Registry()
			if err != nil {
				return err
			}

			obj, err := client.GetObject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if obj == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Object %s not found\n", args[0])
				return nil
			}

			if raw {
				return printJSON(cmd, obj)
			}

			schema, err := a.Schema()
			if err != nil {
				return err
			}
			return printJSON(cmd, assets.RecordFromObject(obj, schema))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw registry object instead of the parsed record")
	return cmd
}
