// Package assets defines the typed model for leased hardware assets stored in
// the remote registry, along with the per-device-type attribute schema used to
// translate between registry wire objects and records.
package assets

import "strings"

// DeviceClass identifies the depreciation class of an asset. The values match
// the registry's object type names.
type DeviceClass string

// Device classes recognized by the valuation engine.
const (
	ClassComputer DeviceClass = "Computers"
	ClassTablet   DeviceClass = "Tablets"
	ClassPhone    DeviceClass = "Phones"
)

// Classify derives the device class from a free-text object type name using a
// case-insensitive substring match. Unknown or empty names default to
// Computers.
func Classify(typeName string) DeviceClass {
	name := strings.ToLower(typeName)
	switch {
	case strings.Contains(name, "tablet"):
		return ClassTablet
	case strings.Contains(name, "phone"):
		return ClassPhone
	default:
		return ClassComputer
	}
}
