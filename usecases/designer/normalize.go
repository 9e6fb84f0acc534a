package designer

import (
	"github.com/hashicorp/go-set/v2"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/geometry"
)

// NormalizeFields makes loaded fields safe to edit: duplicated ids are dropped (first wins), missing ids and
// configs are filled, a missing desktop or mobile layout is synthesized and every layout is clamped to its
// device. The order of the fields is kept.
func NormalizeFields(fields []models.Field) []models.Field {
	seen := set.New[string](len(fields))
	out := make([]models.Field, 0, len(fields))

	for _, field := range fields {
		if _, err := models.FieldTypeFromString(string(field.Type)); err != nil {
			continue
		}
		if field.Id == "" {
			field.Id = newId()
		}
		if !seen.Insert(field.Id) {
			continue
		}

		if field.Config == nil || !models.ConfigMatchesType(field.Type, field.Config) {
			field.Config = models.DefaultFieldConfig(field.Type)
		}
		field.Config = models.NormalizeFieldConfig(field.Config)

		index := len(out)
		if isEmptyLayout(field.Desktop) {
			field.Desktop = geometry.StackedLayout(field.Type, models.DeviceDesktop, index)
		}
		if isEmptyLayout(field.Mobile) {
			field.Mobile = mobileFromDesktop(field, index)
		}
		field.Desktop = geometry.ClampLayout(field.Desktop, models.DeviceDesktop)
		field.Mobile = geometry.ClampLayout(field.Mobile, models.DeviceMobile)

		out = append(out, field)
	}
	return out
}

// mobileFromDesktop stacks the field in a single mobile column, keeping the height it had on desktop.
func mobileFromDesktop(field models.Field, index int) models.DeviceLayout {
	layout := geometry.StackedLayout(field.Type, models.DeviceMobile, index)
	if field.Desktop.Size.Height > 0 {
		layout.Size.Height = field.Desktop.Size.Height
	}
	return geometry.ClampLayout(layout, models.DeviceMobile)
}

func isEmptyLayout(layout models.DeviceLayout) bool {
	return layout.Size.Width == 0 && layout.Size.Height == 0
}
