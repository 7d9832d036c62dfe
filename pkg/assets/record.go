package assets

// Record is the typed view of a registry asset used by the valuation engine.
// Attribute values stay in their registry string form; derived fields are
// recomputed on every reconciliation pass and never persisted locally — the
// registry remains the sole durable store.
type Record struct {
	ObjectID     string      `json:"object_id"`
	ObjectTypeID string      `json:"object_type_id"`
	TypeName     string      `json:"type_name"`
	Class        DeviceClass `json:"device_class"`

	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Model        string `json:"model"`
	OriginalCost string `json:"original_cost"`
	CostWithVAT  string `json:"cost_with_vat"`
	BuyoutPrice  string `json:"buyout_price"`
	PurchaseDate string `json:"purchase_date"`
	DeviceAge    string `json:"device_age"`
}

// RecordFromObject converts a registry wire object into a Record, resolving
// attribute ids through the schema entry for the object's device class.
// Attributes the schema does not know about are ignored.
func RecordFromObject(obj *Object, schema *Schema) *Record {
	class := Classify(obj.ObjectType.Name)
	ids := schema.ForClass(class).Attributes
	attrs := obj.AttributeMap()

	return &Record{
		ObjectID:     obj.ID,
		ObjectTypeID: obj.ObjectType.ID,
		TypeName:     obj.ObjectType.Name,
		Class:        class,
		Name:         attrs[ids.Name],
		SerialNumber: attrs[ids.SerialNumber],
		Model:        attrs[ids.Model],
		OriginalCost: attrs[ids.OriginalCost],
		CostWithVAT:  attrs[ids.CostWithVAT],
		BuyoutPrice:  attrs[ids.BuyoutPrice],
		PurchaseDate: attrs[ids.PurchaseDate],
		DeviceAge:    attrs[ids.DeviceAge],
	}
}
