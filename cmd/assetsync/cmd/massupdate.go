package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
	"github.com/northfleet/assetsync/internal/batch"
)

func newMassUpdateCommand(a *app.App) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "mass-update <aql>",
		Short: "Reconcile every asset matching an AQL query",
		Long: `Mass-update queries the registry for a population of assets and
reconciles them concurrently through a bounded worker pool. Per-asset
failures are collected and reported in the summary; they do not abort the
batch.`,
		Example: `  assetsync mass-update 'objectType = "Computers"'
  assetsync mass-update 'objectType in ("Phones", "Tablets")' --workers 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.Registry()
			if err != nil {
				return err
			}
			schema, err := a.Schema()
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = a.Config().Workers
			}

			orch := batch.New(client, schema,
				batch.WithWorkers(workers),
				batch.WithLogger(a.Logger()),
			)

			summary, err := orch.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if a.Config().Output == "json" {
				return printJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:   %d\n", summary.Total)
			fmt.Fprintf(out, "Updated: %d\n", summary.Updated)
			fmt.Fprintf(out, "Skipped: %d\n", summary.Skipped)
			fmt.Fprintf(out, "Failed:  %d\n", summary.Failed)
			for _, e := range summary.Errors {
				fmt.Fprintf(out, "  %s: %s\n", e.ObjectID, e.Reason)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool width (default from WORKERS env or 5)")
	return cmd
}
