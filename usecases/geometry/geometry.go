// Package geometry computes valid positions and sizes of form fields on the canvas of a device.
// Out of range inputs are clamped, never rejected: a bad drag coordinate must not leave the designer in a state
// it cannot render.
package geometry

import "github.com/checkmarble/form-designer/models"

func ClampSize(size models.Size, device models.Device) models.Size {
	c := ConstraintsFor(device)
	return models.Size{
		Width:  clamp(size.Width, c.MinWidth, c.MaxWidth),
		Height: clamp(size.Height, c.MinHeight, c.MaxHeight),
	}
}

func ClampPosition(position models.Position, size models.Size, device models.Device) models.Position {
	c := ConstraintsFor(device)
	return models.Position{
		X: clamp(position.X, 0, max(c.CanvasWidth-size.Width-Margin, 0)),
		Y: clamp(position.Y, 0, max(c.CanvasHeight-size.Height-Margin, 0)),
	}
}

// ClampLayout clamps the size first, then the position against the clamped size.
func ClampLayout(layout models.DeviceLayout, device models.Device) models.DeviceLayout {
	size := ClampSize(layout.Size, device)
	return models.DeviceLayout{
		Position: ClampPosition(layout.Position, size, device),
		Size:     size,
	}
}

// ResolveSnap aligns the proposed position of the moving field with the edges of the other fields laid out on
// the same device, and with the canvas edges. Each axis is resolved independently; among the candidates within
// SnapThreshold the nearest wins, ties keep the first candidate evaluated. The result is always within bounds.
func ResolveSnap(
	moving models.Field,
	proposed models.Position,
	others []models.Field,
	device models.Device,
) models.Position {
	c := ConstraintsFor(device)
	size := ClampSize(moving.Layout(device).Size, device)
	position := ClampPosition(proposed, size, device)

	xCandidates := []int{0, c.CanvasWidth - size.Width}
	yCandidates := []int{0, c.CanvasHeight - size.Height}
	for _, other := range others {
		if other.Id == moving.Id {
			continue
		}
		layout := other.Layout(device)
		xCandidates = append(xCandidates, edgeCandidates(layout.Position.X, layout.Right(), size.Width)...)
		yCandidates = append(yCandidates, edgeCandidates(layout.Position.Y, layout.Bottom(), size.Height)...)
	}

	snapped := models.Position{
		X: snapAxis(position.X, xCandidates),
		Y: snapAxis(position.Y, yCandidates),
	}
	return ClampPosition(snapped, size, device)
}

// CommitLayout is applied when a drag or resize ends: clamp the size, clamp the position, snap, then clamp the
// snapped position again.
func CommitLayout(
	moving models.Field,
	proposed models.DeviceLayout,
	others []models.Field,
	device models.Device,
) models.DeviceLayout {
	size := ClampSize(proposed.Size, device)
	position := ClampPosition(proposed.Position, size, device)

	moving.SetLayout(device, models.DeviceLayout{Position: position, Size: size})
	return models.DeviceLayout{
		Position: ResolveSnap(moving, position, others, device),
		Size:     size,
	}
}

// DefaultLayout places a new field of the given type. Without a previous field it sits at the device default
// position, otherwise CascadeOffset pixels below the previous one.
func DefaultLayout(fieldType models.FieldType, device models.Device, previous *models.DeviceLayout) models.DeviceLayout {
	c := ConstraintsFor(device)
	size := ClampSize(DefaultSize(fieldType, device), device)
	position := c.DefaultPosition
	if previous != nil {
		position.Y = previous.Position.Y + CascadeOffset
	}
	return models.DeviceLayout{
		Position: ClampPosition(position, size, device),
		Size:     size,
	}
}

// StackedLayout is the layout of the index-th field of a column of default sized fields. Used to synthesize a
// missing device layout of legacy forms.
func StackedLayout(fieldType models.FieldType, device models.Device, index int) models.DeviceLayout {
	c := ConstraintsFor(device)
	size := ClampSize(DefaultSize(fieldType, device), device)
	position := models.Position{
		X: c.DefaultPosition.X,
		Y: c.DefaultPosition.Y + index*CascadeOffset,
	}
	return models.DeviceLayout{
		Position: ClampPosition(position, size, device),
		Size:     size,
	}
}

func edgeCandidates(start, end, size int) []int {
	return []int{start, end, start - size, end - size}
}

func snapAxis(value int, candidates []int) int {
	best := value
	bestDistance := SnapThreshold + 1
	for _, candidate := range candidates {
		distance := abs(candidate - value)
		if distance <= SnapThreshold && distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

func clamp(value, low, high int) int {
	return min(max(value, low), high)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
