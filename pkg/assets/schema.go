package assets

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/northfleet/assetsync/pkg/errors"
)

//go:embed schema.yaml
var embeddedSchema []byte

// AttributeIDs maps the logical valuation attributes to the registry's
// object-type-attribute ids for one device type. Ids differ per type and must
// always be resolved through the type, never assumed uniform.
type AttributeIDs struct {
	Name         string `yaml:"name"`
	SerialNumber string `yaml:"serial_number"`
	Model        string `yaml:"model"`
	OriginalCost string `yaml:"original_cost"`
	CostWithVAT  string `yaml:"cost_with_vat"`
	BuyoutPrice  string `yaml:"buyout_price"`
	PurchaseDate string `yaml:"purchase_date"`
	DeviceAge    string `yaml:"device_age"`
}

// TypeSchema describes one device object type in the registry.
type TypeSchema struct {
	ObjectTypeID string       `yaml:"object_type_id"`
	Attributes   AttributeIDs `yaml:"attributes"`
}

// Schema holds the attribute-id mappings for the three device object types.
type Schema struct {
	Types map[DeviceClass]TypeSchema `yaml:"types"`
}

// DefaultSchema loads the schema embedded in the binary.
func DefaultSchema() (*Schema, error) {
	return parseSchema(embeddedSchema, "embedded schema")
}

// LoadSchema reads a schema from a YAML file, falling back to the embedded
// default when path is empty.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return parseSchema(data, path)
}

func parseSchema(data []byte, source string) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	for _, class := range []DeviceClass{ClassComputer, ClassTablet, ClassPhone} {
		ts, ok := s.Types[class]
		if !ok {
			return nil, errors.NewConfigError("schema", fmt.Sprintf("missing device type %s in %s", class, source), nil)
		}
		if ts.ObjectTypeID == "" {
			return nil, errors.NewConfigError("schema", fmt.Sprintf("device type %s has no object_type_id in %s", class, source), nil)
		}
	}
	return &s, nil
}

// ForClass returns the type schema for a device class.
func (s *Schema) ForClass(class DeviceClass) TypeSchema {
	return s.Types[class]
}

// ForTypeID returns the type schema matching a registry object type id.
func (s *Schema) ForTypeID(typeID string) (TypeSchema, bool) {
	for _, ts := range s.Types {
		if ts.ObjectTypeID == typeID {
			return ts, true
		}
	}
	return TypeSchema{}, false
}
