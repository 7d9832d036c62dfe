package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
)

func newQueryCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "query <aql>",
		Short: "Search the registry with an AQL query",
		Example: `  assetsync query 'objectType = "Computers"'
  assetsync query 'objectType in ("Phones", "Tablets")' -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.Registry()
			if err != nil {
				return err
			}

			objects, err := client.SearchObjects(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if a.Config().Output == "json" {
				return printJSON(cmd, objects)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tTYPE")
			for _, obj := range objects {
				fmt.Fprintf(w, "%s\t%s\t%s\n", obj.ID, obj.Label, obj.ObjectType.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d objects\n", len(objects))
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
