package models

import (
	"bytes"
	"encoding/json"
)

const (
	MinMaxProducts     = 1
	MaxMaxProducts     = 50
	DefaultMaxProducts = 10
)

// FieldConfig is the type-specific configuration of a field. Each field type has exactly one variant.
type FieldConfig interface {
	isFieldConfig()
}

// EmptyConfig is used by the field types without any specific configuration.
type EmptyConfig struct{}

// NumberConfig carries the formula of a computed number field. The formula is stored verbatim, it is
// evaluated by the rendering layer.
type NumberConfig struct {
	IsFormula bool   `json:"isFormula"`
	Formula   string `json:"formula,omitempty"`
}

type DropdownConfig struct {
	Options []string `json:"options"`
}

// ProductLookupConfig maps a field to the product spreadsheet. The values are opaque to the designer and are
// read by the export integration.
type ProductLookupConfig struct {
	SheetUrl       string   `json:"sheetUrl,omitempty"`
	LookupColumn   string   `json:"lookupColumn,omitempty"`
	DisplayColumns []string `json:"displayColumns,omitempty"`
}

type QrProductScannerConfig struct {
	ProductLookupConfig
	FieldMappings []FieldMapping `json:"fieldMappings"`
	MaxProducts   int            `json:"maxProducts"`
}

type Aggregation string

const (
	AggregationFirst   Aggregation = "first"
	AggregationSum     Aggregation = "sum"
	AggregationAverage Aggregation = "average"
	AggregationLast    Aggregation = "last"
)

type MappingFieldType string

const (
	MappingFieldTypeText   MappingFieldType = "text"
	MappingFieldTypeNumber MappingFieldType = "number"
)

// FieldMapping describes how the values of one spreadsheet column aggregate into one generated product
// sub-field of a qr product scanner.
type FieldMapping struct {
	FieldName     string           `json:"fieldName"`
	SheetColumn   string           `json:"sheetColumn"`
	Aggregation   Aggregation      `json:"aggregation"`
	IsManualEntry bool             `json:"isManualEntry"`
	FieldType     MappingFieldType `json:"fieldType"`
}

func (EmptyConfig) isFieldConfig()            {}
func (NumberConfig) isFieldConfig()           {}
func (DropdownConfig) isFieldConfig()         {}
func (ProductLookupConfig) isFieldConfig()    {}
func (QrProductScannerConfig) isFieldConfig() {}

func DefaultFieldConfig(fieldType FieldType) FieldConfig {
	switch fieldType {
	case FieldTypeNumber:
		return NumberConfig{}
	case FieldTypeDropdown:
		return DropdownConfig{Options: []string{}}
	case FieldTypeProductLookup:
		return ProductLookupConfig{}
	case FieldTypeQrProductScanner:
		return QrProductScannerConfig{
			FieldMappings: []FieldMapping{
				{
					FieldName:   "Product Name",
					SheetColumn: "Name",
					Aggregation: AggregationFirst,
					FieldType:   MappingFieldTypeText,
				},
				{
					FieldName:   "Price",
					SheetColumn: "Price",
					Aggregation: AggregationSum,
					FieldType:   MappingFieldTypeNumber,
				},
			},
			MaxProducts: DefaultMaxProducts,
		}
	case FieldTypeText, FieldTypeDate, FieldTypeQr, FieldTypeGeolocation, FieldTypeDatetime, FieldTypeUser:
		return EmptyConfig{}
	}
	return EmptyConfig{}
}

// ConfigMatchesType tells whether the config variant is the one owned by the field type.
func ConfigMatchesType(fieldType FieldType, config FieldConfig) bool {
	switch config.(type) {
	case NumberConfig:
		return fieldType == FieldTypeNumber
	case DropdownConfig:
		return fieldType == FieldTypeDropdown
	case ProductLookupConfig:
		return fieldType == FieldTypeProductLookup
	case QrProductScannerConfig:
		return fieldType == FieldTypeQrProductScanner
	case EmptyConfig:
		_, isEmpty := DefaultFieldConfig(fieldType).(EmptyConfig)
		return isEmpty
	}
	return false
}

// NormalizeFieldConfig bounds the numeric settings of a config and replaces unknown enum values by their
// defaults. MaxProducts is clamped into [MinMaxProducts, MaxMaxProducts].
func NormalizeFieldConfig(config FieldConfig) FieldConfig {
	switch c := config.(type) {
	case QrProductScannerConfig:
		c.MaxProducts = min(max(c.MaxProducts, MinMaxProducts), MaxMaxProducts)
		mappings := make([]FieldMapping, len(c.FieldMappings))
		for i, m := range c.FieldMappings {
			switch m.Aggregation {
			case AggregationFirst, AggregationSum, AggregationAverage, AggregationLast:
			default:
				m.Aggregation = AggregationFirst
			}
			if m.FieldType != MappingFieldTypeNumber {
				m.FieldType = MappingFieldTypeText
			}
			mappings[i] = m
		}
		c.FieldMappings = mappings
		return c
	case DropdownConfig:
		if c.Options == nil {
			c.Options = []string{}
		}
		return c
	}
	return config
}

// DecodeFieldConfig parses a raw json config for the given field type. An absent config yields the default one.
func DecodeFieldConfig(fieldType FieldType, raw json.RawMessage) (FieldConfig, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultFieldConfig(fieldType), nil
	}

	switch fieldType {
	case FieldTypeNumber:
		var c NumberConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case FieldTypeDropdown:
		var c DropdownConfig
		err := json.Unmarshal(raw, &c)
		return NormalizeFieldConfig(c), err
	case FieldTypeProductLookup:
		var c ProductLookupConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case FieldTypeQrProductScanner:
		var c QrProductScannerConfig
		err := json.Unmarshal(raw, &c)
		return NormalizeFieldConfig(c), err
	}
	return EmptyConfig{}, nil
}
