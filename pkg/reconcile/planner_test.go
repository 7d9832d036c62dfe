package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/logging"
)

var today = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func newRecord() *assets.Record {
	return &assets.Record{
		ObjectID:     "OBJ-1",
		ObjectTypeID: "23",
		TypeName:     "Computers",
		Class:        assets.ClassComputer,
		Model:        "Dell 7490",
		SerialNumber: "SN123",
		OriginalCost: "1000.00",
		PurchaseDate: "2023-11-10", // 19 months before today
	}
}

func TestBuildFullPlan(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	plan := planner.Build(newRecord(), today)

	// 19 months → rate 29.75%, 1210.00 × 0.2975 = 359.975 → 359.98
	assert.Equal(t, Plan{
		FieldName:        "Dell 7490 - SN123, Buyout Price (€359.98)",
		FieldDeviceAge:   "19",
		FieldCostWithVAT: "1210.00",
		FieldBuyoutPrice: "359.98",
	}, plan)
}

func TestBuildIdempotent(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()

	plan := planner.Build(rec, today)
	require.False(t, plan.Empty())

	// Apply the plan the way the registry would store it.
	rec.Name = plan[FieldName]
	rec.DeviceAge = plan[FieldDeviceAge]
	rec.CostWithVAT = plan[FieldCostWithVAT]
	rec.BuyoutPrice = plan[FieldBuyoutPrice]

	second := planner.Build(rec, today)
	assert.True(t, second.Empty(), "second pass must be a no-op, got %v", second)
}

func TestBuildNameWithoutSuffixUnderThreshold(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.PurchaseDate = "2024-08-10" // 10 months before today

	plan := planner.Build(rec, today)
	assert.Equal(t, "Dell 7490 - SN123", plan[FieldName])
	assert.Equal(t, "10", plan[FieldDeviceAge])
}

func TestBuildNameSuffixSelfCorrects(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.PurchaseDate = "2023-12-10" // 18 months: at the threshold, no suffix yet
	rec.Name = "Dell 7490 - SN123"

	plan := planner.Build(rec, today)
	_, hasName := plan[FieldName]
	assert.False(t, hasName)

	// One month later the threshold is crossed and the name changes.
	later := today.AddDate(0, 1, 0)
	plan = planner.Build(rec, later)
	assert.Contains(t, plan[FieldName], ", Buyout Price (€")
}

func TestBuildSkipsNameWithoutSerial(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.SerialNumber = ""

	plan := planner.Build(rec, today)
	_, hasName := plan[FieldName]
	assert.False(t, hasName)

	// Other groups are unaffected.
	assert.Equal(t, "19", plan[FieldDeviceAge])
	assert.Equal(t, "1210.00", plan[FieldCostWithVAT])
	assert.Equal(t, "359.98", plan[FieldBuyoutPrice])
}

func TestBuildSkipsBuyoutWithoutCost(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.OriginalCost = ""

	plan := planner.Build(rec, today)
	assert.Equal(t, Plan{
		FieldName:      "Dell 7490 - SN123", // no buyout price, so no suffix even at 19 months
		FieldDeviceAge: "19",
	}, plan)
}

func TestBuildSkipsAgeAndBuyoutWithoutPurchaseDate(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.PurchaseDate = ""

	plan := planner.Build(rec, today)
	assert.Equal(t, Plan{FieldName: "Dell 7490 - SN123"}, plan)
}

func TestBuildUnparseableInputs(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	rec := newRecord()
	rec.PurchaseDate = "garbage"
	rec.OriginalCost = "n/a"

	plan := planner.Build(rec, today)
	assert.Equal(t, Plan{FieldName: "Dell 7490 - SN123"}, plan)
}

func TestBuildEmptyPlanForEmptyRecord(t *testing.T) {
	planner := NewPlanner(&logging.Nop)
	plan := planner.Build(&assets.Record{ObjectID: "OBJ-2", Class: assets.ClassComputer}, today)
	assert.True(t, plan.Empty())
}

func TestPlanAttributes(t *testing.T) {
	ids := assets.AttributeIDs{
		Name:        "231",
		DeviceAge:   "244",
		CostWithVAT: "242",
		BuyoutPrice: "243",
	}

	plan := Plan{
		FieldName:        "Dell 7490 - SN123",
		FieldDeviceAge:   "19",
		FieldCostWithVAT: "1210.00",
		FieldBuyoutPrice: "359.98",
	}

	attrs := plan.Attributes(ids)
	require.Len(t, attrs, 4)
	assert.Equal(t, "231", attrs[0].ObjectTypeAttributeID)
	assert.Equal(t, "Dell 7490 - SN123", attrs[0].Values[0].Value)
	assert.Equal(t, "243", attrs[3].ObjectTypeAttributeID)

	partial := Plan{FieldBuyoutPrice: "359.98"}
	attrs = partial.Attributes(ids)
	require.Len(t, attrs, 1)
	assert.Equal(t, "243", attrs[0].ObjectTypeAttributeID)
}
