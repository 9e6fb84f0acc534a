package dto

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/designer"
)

type PositionDto struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type SizeDto struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type LayoutDto struct {
	Position PositionDto `json:"position"`
	Size     SizeDto     `json:"size"`
}

type FieldDto struct {
	Id          string             `json:"id"`
	Type        string             `json:"type"`
	Label       string             `json:"label"`
	Placeholder string             `json:"placeholder,omitempty"`
	Required    bool               `json:"required"`
	Readonly    bool               `json:"readonly"`
	Hidden      bool               `json:"hidden"`
	Permanent   bool               `json:"permanent"`
	Config      models.FieldConfig `json:"config"`
	Desktop     LayoutDto          `json:"desktop"`
	Mobile      LayoutDto          `json:"mobile"`
}

func AdaptPositionDto(p models.Position) PositionDto {
	return PositionDto{X: p.X, Y: p.Y}
}

func (p PositionDto) Adapt() models.Position {
	return models.Position{X: p.X, Y: p.Y}
}

func (s SizeDto) Adapt() models.Size {
	return models.Size{Width: s.Width, Height: s.Height}
}

func AdaptLayoutDto(l models.DeviceLayout) LayoutDto {
	return LayoutDto{
		Position: AdaptPositionDto(l.Position),
		Size:     SizeDto{Width: l.Size.Width, Height: l.Size.Height},
	}
}

func (l LayoutDto) Adapt() models.DeviceLayout {
	return models.DeviceLayout{
		Position: l.Position.Adapt(),
		Size:     l.Size.Adapt(),
	}
}

func AdaptFieldDto(f models.Field) FieldDto {
	config := f.Config
	if config == nil {
		config = models.DefaultFieldConfig(f.Type)
	}
	return FieldDto{
		Id:          f.Id,
		Type:        string(f.Type),
		Label:       f.Label,
		Placeholder: f.Placeholder,
		Required:    f.Required,
		Readonly:    f.Readonly,
		Hidden:      f.Hidden,
		Permanent:   f.Permanent,
		Config:      config,
		Desktop:     AdaptLayoutDto(f.Desktop),
		Mobile:      AdaptLayoutDto(f.Mobile),
	}
}

type AddFieldBody struct {
	Type  string `json:"type" binding:"required,field_type"`
	Label string `json:"label" binding:"max=200"`
	// Position places the field on Device, desktop by default, instead of below the last field.
	Device   string       `json:"device" binding:"omitempty,device"`
	Position *PositionDto `json:"position"`
}

func AdaptAddFieldInput(body AddFieldBody) designer.AddFieldInput {
	input := designer.AddFieldInput{
		Type:   models.FieldType(body.Type),
		Label:  body.Label,
		Device: models.Device(body.Device),
	}
	if body.Position != nil {
		position := body.Position.Adapt()
		input.Position = &position
		if input.Device == "" {
			input.Device = models.DeviceDesktop
		}
	}
	return input
}

// UpdateFieldBody is a partial update: absent and null attributes are left untouched.
type UpdateFieldBody struct {
	Type        *string         `json:"type" binding:"omitempty,field_type"`
	Label       null.String     `json:"label"`
	Placeholder null.String     `json:"placeholder"`
	Required    null.Bool       `json:"required"`
	Readonly    null.Bool       `json:"readonly"`
	Hidden      null.Bool       `json:"hidden"`
	Permanent   null.Bool       `json:"permanent"`
	Config      json.RawMessage `json:"config"`
	Desktop     *LayoutDto      `json:"desktop"`
	Mobile      *LayoutDto      `json:"mobile"`
}

// HasConfig is false for an absent or null config.
func (body UpdateFieldBody) HasConfig() bool {
	return len(body.Config) > 0 && string(body.Config) != "null"
}

// AdaptFieldUpdate decodes the config according to the new type of the field, or its current type.
func AdaptFieldUpdate(body UpdateFieldBody, currentType models.FieldType) (models.FieldUpdate, error) {
	update := models.FieldUpdate{
		Label:       body.Label,
		Placeholder: body.Placeholder,
		Required:    body.Required,
		Readonly:    body.Readonly,
		Hidden:      body.Hidden,
		Permanent:   body.Permanent,
	}

	configType := currentType
	if body.Type != nil {
		fieldType := models.FieldType(*body.Type)
		update.Type = &fieldType
		configType = fieldType
	}
	if body.HasConfig() {
		config, err := models.DecodeFieldConfig(configType, body.Config)
		if err != nil {
			return models.FieldUpdate{}, errors.Mark(errors.Wrap(err, "invalid field config"), models.BadParameterError)
		}
		update.Config = config
	}
	if body.Desktop != nil {
		layout := body.Desktop.Adapt()
		update.Desktop = &layout
	}
	if body.Mobile != nil {
		layout := body.Mobile.Adapt()
		update.Mobile = &layout
	}
	return update, nil
}
