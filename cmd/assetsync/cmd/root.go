// Package cmd defines the assetsync CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
)

// NewRootCommand creates the root cobra command with all subcommands.
func NewRootCommand(a *app.App) *cobra.Command {
	var (
		debug      bool
		output     string
		schemaFile string
	)

	rootCmd := &cobra.Command{
		Use:     "assetsync",
		Short:   "Asset valuation and synchronization for the leased hardware registry",
		Version: a.Version(),
		Long: `Assetsync keeps the computed attributes of leased hardware assets
(device age, VAT-inclusive cost, buyout price, display name) in sync with
their current depreciated value in the remote asset registry.

Registry credentials are read from JIRA_URL, JIRA_WORKSPACE_ID, JIRA_USER
and JIRA_API_TOKEN (environment variables or a .env file).`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.Config().UpdateFromFlags(debug, output, schemaFile, 0)
			a.ReloadLogger()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format: text, json")
	rootCmd.PersistentFlags().StringVar(&schemaFile, "schema", "", "attribute schema file (defaults to the embedded schema)")

	rootCmd.SetVersionTemplate("assetsync {{.Version}}\n")

	rootCmd.AddCommand(
		newQueryCommand(a),
		newGetCommand(a),
		newUpdateCommand(a),
		newMassUpdateCommand(a),
	)

	return rootCmd
}
