// Package reconcile decides which attributes of a registry asset are stale.
// A plan holds only the fields whose computed value differs from what the
// registry currently stores, so applying it twice in a row is a no-op the
// second time.
package reconcile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/depreciation"
)

// Field names the logical attributes a plan can update.
type Field string

// Fields a reconciliation pass may write.
const (
	FieldName        Field = "NAME"
	FieldDeviceAge   Field = "DEVICE_AGE"
	FieldCostWithVAT Field = "COST_WITH_VAT"
	FieldBuyoutPrice Field = "BUYOUT_PRICE"
)

// buyoutNameThresholdMonths is the age past which the buyout price is
// appended to the display name.
const buyoutNameThresholdMonths = 18

// Plan maps stale fields to their new registry string values. An empty plan
// means the asset is already fully reconciled.
type Plan map[Field]string

// Empty reports whether the plan contains no writes.
func (p Plan) Empty() bool {
	return len(p) == 0
}

// Attributes renders the plan into the registry's wire attribute payload
// using the attribute ids of the asset's device type.
func (p Plan) Attributes(ids assets.AttributeIDs) []assets.ObjectAttribute {
	fieldIDs := map[Field]string{
		FieldName:        ids.Name,
		FieldDeviceAge:   ids.DeviceAge,
		FieldCostWithVAT: ids.CostWithVAT,
		FieldBuyoutPrice: ids.BuyoutPrice,
	}

	attrs := make([]assets.ObjectAttribute, 0, len(p))
	for _, field := range []Field{FieldName, FieldDeviceAge, FieldCostWithVAT, FieldBuyoutPrice} {
		value, ok := p[field]
		if !ok {
			continue
		}
		attrs = append(attrs, assets.ObjectAttribute{
			ObjectTypeAttributeID: fieldIDs[field],
			Values:                []assets.AttributeValue{{Value: value}},
		})
	}
	return attrs
}

// Planner builds reconciliation plans. It holds no per-asset state; every
// call recomputes derived values from the record it is given.
type Planner struct {
	logger *zerolog.Logger
}

// NewPlanner creates a planner that logs skipped attribute groups to logger.
func NewPlanner(logger *zerolog.Logger) *Planner {
	return &Planner{logger: logger}
}

// Build computes the minimal set of writes needed to bring rec up to date as
// of today. The three attribute groups (name, age, buyout/VAT) validate
// independently: a missing source field skips its group and never blocks the
// others.
func (pl *Planner) Build(rec *assets.Record, today time.Time) Plan {
	plan := Plan{}

	purchase, err := depreciation.ParsePurchaseDate(rec.PurchaseDate)
	if err != nil {
		pl.logger.Warn().
			Str("object_id", rec.ObjectID).
			Str("purchase_date", rec.PurchaseDate).
			Msg("Unparseable purchase date, skipping age and buyout updates")
		purchase = time.Time{}
	}
	months := depreciation.MonthsSincePurchase(purchase, today)

	// Age group: needs a purchase date.
	if months > 0 {
		age := strconv.Itoa(months)
		if age != rec.DeviceAge {
			plan[FieldDeviceAge] = age
		}
	} else {
		pl.logger.Debug().
			Str("object_id", rec.ObjectID).
			Msg("No purchase date, skipping age update")
	}

	// Buyout group: needs an original cost and a purchase date. Cost with VAT
	// and buyout price are always recomputed together.
	var buyout string
	if rec.OriginalCost != "" && months > 0 {
		if costWithVAT, ok := depreciation.CostWithVAT(rec.OriginalCost); ok {
			rate := depreciation.RateForMonth(months, rec.Class)
			buyout = depreciation.BuyoutPrice(costWithVAT, rate).StringFixed(2)

			if vat := costWithVAT.StringFixed(2); vat != rec.CostWithVAT {
				plan[FieldCostWithVAT] = vat
			}
			if buyout != rec.BuyoutPrice {
				plan[FieldBuyoutPrice] = buyout
			}
		} else {
			pl.logger.Warn().
				Str("object_id", rec.ObjectID).
				Str("original_cost", rec.OriginalCost).
				Msg("Unparseable original cost, skipping buyout update")
		}
	} else {
		pl.logger.Debug().
			Str("object_id", rec.ObjectID).
			Msg("Missing original cost or purchase date, skipping buyout update")
	}

	// Name group: needs a model and a serial number. The buyout suffix is
	// recomputed every pass so the name self-corrects as the asset crosses
	// the age threshold.
	if rec.Model != "" && rec.SerialNumber != "" {
		name := fmt.Sprintf("%s - %s", rec.Model, rec.SerialNumber)
		if months > buyoutNameThresholdMonths && buyout != "" {
			name += fmt.Sprintf(", Buyout Price (€%s)", buyout)
		}
		if name != rec.Name {
			plan[FieldName] = name
		}
	} else {
		pl.logger.Debug().
			Str("object_id", rec.ObjectID).
			Msg("Missing model or serial number, skipping name update")
	}

	return plan
}
