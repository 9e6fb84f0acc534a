package geometry

import "github.com/checkmarble/form-designer/models"

const (
	// Margin is kept between a field and the right/bottom edges of the canvas.
	Margin = 10

	// SnapThreshold is the max distance in pixels at which an edge attracts a dragged field.
	SnapThreshold = 20

	// CascadeOffset is the vertical offset between a new field and the last field of the canvas.
	CascadeOffset = 80
)

// Constraints is the full constraint table of one device. Adding a device requires a complete table.
type Constraints struct {
	CanvasWidth     int
	CanvasHeight    int
	MinWidth        int
	MaxWidth        int
	MinHeight       int
	MaxHeight       int
	DefaultPosition models.Position
}

var constraints = map[models.Device]Constraints{
	models.DeviceDesktop: {
		CanvasWidth:     1200,
		CanvasHeight:    800,
		MinWidth:        150,
		MaxWidth:        1100,
		MinHeight:       40,
		MaxHeight:       600,
		DefaultPosition: models.Position{X: 50, Y: 50},
	},
	models.DeviceMobile: {
		CanvasWidth:     375,
		CanvasHeight:    667,
		MinWidth:        100,
		MaxWidth:        345,
		MinHeight:       40,
		MaxHeight:       500,
		DefaultPosition: models.Position{X: 15, Y: 20},
	},
}

type defaultSize struct {
	desktop models.Size
	mobile  models.Size
}

var defaultSizes = map[models.FieldType]defaultSize{
	models.FieldTypeText:             {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeNumber:           {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeDate:             {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeDatetime:         {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeDropdown:         {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeUser:             {models.Size{Width: 300, Height: 60}, models.Size{Width: 345, Height: 60}},
	models.FieldTypeGeolocation:      {models.Size{Width: 300, Height: 80}, models.Size{Width: 345, Height: 80}},
	models.FieldTypeQr:               {models.Size{Width: 300, Height: 100}, models.Size{Width: 345, Height: 100}},
	models.FieldTypeProductLookup:    {models.Size{Width: 400, Height: 120}, models.Size{Width: 345, Height: 120}},
	models.FieldTypeQrProductScanner: {models.Size{Width: 500, Height: 200}, models.Size{Width: 345, Height: 200}},
}

// ConstraintsFor returns the table of the device. Unknown devices get the desktop table.
func ConstraintsFor(device models.Device) Constraints {
	c, ok := constraints[device]
	if !ok {
		return constraints[models.DeviceDesktop]
	}
	return c
}

func DefaultSize(fieldType models.FieldType, device models.Device) models.Size {
	sizes, ok := defaultSizes[fieldType]
	if !ok {
		sizes = defaultSizes[models.FieldTypeText]
	}
	if device == models.DeviceMobile {
		return sizes.mobile
	}
	return sizes.desktop
}
