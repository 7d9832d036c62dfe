package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/northfleet/assetsync/cmd/assetsync/app"
	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/reconcile"
)

func newUpdateCommand(a *app.App) *cobra.Command {
	var (
		dryRun       bool
		model        string
		serial       string
		cost         string
		purchaseDate string
	)

	cmd := &cobra.Command{
		Use:   "update <object-id>",
		Short: "Reconcile a single asset's computed attributes",
		Long: `Update fetches the asset fresh from the registry, recomputes its device
age, VAT-inclusive cost, buyout price and display name, and writes only the
fields that differ from what the registry currently stores.

Source attributes (model, serial number, original cost, purchase date) can
be overridden; overrides are written alongside the recomputed fields.`,
		Example: `  assetsync update OBJ-1234
  assetsync update OBJ-1234 --dry-run
  assetsync update OBJ-1234 --cost 899.00 --purchase-date 2024-03-15`,
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

			obj, err := client.GetObjectFresh(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if obj == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Object %s not found\n", args[0])
				return nil
			}

			rec := assets.RecordFromObject(obj, schema)
			ids := schema.ForClass(rec.Class).Attributes

			// Apply source-field overrides before planning so derived fields
			// recompute from the overridden values.
			var overrides []assets.ObjectAttribute
			override := func(id, value string, field *string) {
				if value == "" || value == *field {
					return
				}
				*field = value
				overrides = append(overrides, assets.ObjectAttribute{
					ObjectTypeAttributeID: id,
					Values:                []assets.AttributeValue{{Value: value}},
				})
			}
			override(ids.Model, model, &rec.Model)
			override(ids.SerialNumber, serial, &rec.SerialNumber)
			override(ids.OriginalCost, cost, &rec.OriginalCost)
			override(ids.PurchaseDate, purchaseDate, &rec.PurchaseDate)

			planner := reconcile.NewPlanner(a.Logger())
			plan := planner.Build(rec, time.Now())

			if plan.Empty() && len(overrides) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Object %s is up to date\n", rec.ObjectID)
				return nil
			}

			attrs := append(overrides, plan.Attributes(ids)...)
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would update %s (%d attributes):\n", rec.ObjectID, len(attrs))
				return printJSON(cmd, plan)
			}

			if err := client.UpdateObject(cmd.Context(), rec.ObjectID, rec.ObjectTypeID, attrs); err != nil {
				return err
			}
			client.VerifyUpdate(cmd.Context(), rec.ObjectID, attrs)

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%d attributes)\n", rec.ObjectID, len(attrs))
			return printJSON(cmd, plan)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and print the plan without writing")
	cmd.Flags().StringVar(&model, "model", "", "override the asset's model")
	cmd.Flags().StringVar(&serial, "serial", "", "override the asset's serial number")
	cmd.Flags().StringVar(&cost, "cost", "", "override the asset's original cost (excluding VAT)")
	cmd.Flags().StringVar(&purchaseDate, "purchase-date", "", "override the asset's purchase date (YYYY-MM-DD)")
	return cmd
}
