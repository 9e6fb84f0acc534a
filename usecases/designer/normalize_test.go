package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/geometry"
)

func TestNormalizeFields_synthesizes_the_mobile_layout(t *testing.T) {
	fields := []models.Field{
		{
			Id:   "a",
			Type: models.FieldTypeText,
			Desktop: models.DeviceLayout{
				Position: models.Position{X: 40, Y: 70},
				Size:     models.Size{Width: 250, Height: 90},
			},
		},
		{
			Id:   "b",
			Type: models.FieldTypeQrProductScanner,
			Desktop: models.DeviceLayout{
				Position: models.Position{X: 40, Y: 200},
				Size:     models.Size{Width: 500, Height: 200},
			},
		},
	}

	normalized := NormalizeFields(fields)

	require.Len(t, normalized, 2)
	assert.Equal(t, fields[0].Desktop, normalized[0].Desktop)
	assert.Equal(t, models.DeviceLayout{
		Position: models.Position{X: 15, Y: 20},
		Size:     models.Size{Width: 345, Height: 90},
	}, normalized[0].Mobile)
	assert.Equal(t, 100, normalized[1].Mobile.Position.Y)
	assert.Equal(t, models.DefaultFieldConfig(models.FieldTypeQrProductScanner), normalized[1].Config)
}

func TestNormalizeFields_both_layouts_within_bounds(t *testing.T) {
	var fields []models.Field
	for i, fieldType := range models.FieldTypes {
		fields = append(fields, models.Field{
			Id:   string(fieldType),
			Type: fieldType,
			Desktop: models.DeviceLayout{
				Position: models.Position{X: 5000, Y: -10 * i},
				Size:     models.Size{Width: 10, Height: 5000},
			},
			Mobile: models.DeviceLayout{
				Position: models.Position{X: -1, Y: 700},
				Size:     models.Size{Width: 400, Height: 1},
			},
		})
	}

	for _, field := range NormalizeFields(fields) {
		for _, device := range models.Devices {
			layout := field.Layout(device)
			assert.Equal(t, geometry.ClampLayout(layout, device), layout, "%s on %s", field.Id, device)
			assert.NotZero(t, layout.Size.Width)
		}
	}
}

func TestNormalizeFields_drops_duplicates_and_unknown_types(t *testing.T) {
	fields := []models.Field{
		{Id: "a", Type: models.FieldTypeText, Label: "first"},
		{Id: "b", Type: models.FieldType("signature")},
		{Id: "a", Type: models.FieldTypeText, Label: "second"},
		{Type: models.FieldTypeNumber},
	}

	normalized := NormalizeFields(fields)

	require.Len(t, normalized, 2)
	assert.Equal(t, "first", normalized[0].Label)
	assert.NotEmpty(t, normalized[1].Id)
	assert.Equal(t, models.NumberConfig{}, normalized[1].Config)
}
