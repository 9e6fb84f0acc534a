package models

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
)

type FieldType string

const (
	FieldTypeText             FieldType = "text"
	FieldTypeNumber           FieldType = "number"
	FieldTypeDate             FieldType = "date"
	FieldTypeDropdown         FieldType = "dropdown"
	FieldTypeProductLookup    FieldType = "productLookup"
	FieldTypeQr               FieldType = "qr"
	FieldTypeQrProductScanner FieldType = "qrProductScanner"
	FieldTypeGeolocation      FieldType = "geolocation"
	FieldTypeDatetime         FieldType = "datetime"
	FieldTypeUser             FieldType = "user"
)

var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeDropdown,
	FieldTypeProductLookup,
	FieldTypeQr,
	FieldTypeQrProductScanner,
	FieldTypeGeolocation,
	FieldTypeDatetime,
	FieldTypeUser,
}

func FieldTypeFromString(s string) (FieldType, error) {
	for _, t := range FieldTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFieldType, "%q", s)
}

// Field is a single form input definition. Both device layouts are always present and owned by the field.
type Field struct {
	Id          string       `json:"id"`
	Type        FieldType    `json:"type"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required"`
	Readonly    bool         `json:"readonly"`
	Hidden      bool         `json:"hidden"`
	Permanent   bool         `json:"permanent"`
	Config      FieldConfig  `json:"config"`
	Desktop     DeviceLayout `json:"desktop"`
	Mobile      DeviceLayout `json:"mobile"`
}

func (f Field) Layout(device Device) DeviceLayout {
	if device == DeviceMobile {
		return f.Mobile
	}
	return f.Desktop
}

func (f *Field) SetLayout(device Device, layout DeviceLayout) {
	if device == DeviceMobile {
		f.Mobile = layout
		return
	}
	f.Desktop = layout
}

// IsFormula is true for number fields whose value is computed from other number fields.
func (f Field) IsFormula() bool {
	cfg, ok := f.Config.(NumberConfig)
	return ok && f.Type == FieldTypeNumber && cfg.IsFormula
}

type fieldJSON struct {
	Id          string          `json:"id"`
	Type        FieldType       `json:"type"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder,omitempty"`
	Required    bool            `json:"required"`
	Readonly    bool            `json:"readonly"`
	Hidden      bool            `json:"hidden"`
	Permanent   bool            `json:"permanent"`
	Config      json.RawMessage `json:"config,omitempty"`
	Desktop     DeviceLayout    `json:"desktop"`
	Mobile      DeviceLayout    `json:"mobile"`
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, err := FieldTypeFromString(string(raw.Type)); err != nil {
		return err
	}

	config, err := DecodeFieldConfig(raw.Type, raw.Config)
	if err != nil {
		return errors.Wrapf(err, "invalid config for field %s", raw.Id)
	}

	*f = Field{
		Id:          raw.Id,
		Type:        raw.Type,
		Label:       raw.Label,
		Placeholder: raw.Placeholder,
		Required:    raw.Required,
		Readonly:    raw.Readonly,
		Hidden:      raw.Hidden,
		Permanent:   raw.Permanent,
		Config:      config,
		Desktop:     raw.Desktop,
		Mobile:      raw.Mobile,
	}
	return nil
}

// FieldUpdate is a partial update of a field. Zero values (invalid nulls, nil pointers, nil config) leave the
// corresponding attribute untouched.
type FieldUpdate struct {
	Type        *FieldType
	Label       null.String
	Placeholder null.String
	Required    null.Bool
	Readonly    null.Bool
	Hidden      null.Bool
	Permanent   null.Bool
	Config      FieldConfig
	Desktop     *DeviceLayout
	Mobile      *DeviceLayout
}

func (u FieldUpdate) TouchesLayout() bool {
	return u.Desktop != nil || u.Mobile != nil
}
