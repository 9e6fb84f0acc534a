package models

type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

var Devices = []Device{DeviceDesktop, DeviceMobile}

func DeviceFromString(s string) (Device, error) {
	switch Device(s) {
	case DeviceDesktop, DeviceMobile:
		return Device(s), nil
	}
	return "", ErrUnknownDevice
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeviceLayout is the placement of a field on the canvas of one device, in pixels local to that canvas.
type DeviceLayout struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

func (l DeviceLayout) Right() int {
	return l.Position.X + l.Size.Width
}

func (l DeviceLayout) Bottom() int {
	return l.Position.Y + l.Size.Height
}
