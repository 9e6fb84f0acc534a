// Package canvas turns pointer gestures on a device canvas into committed field layouts. Previews are computed
// without touching the fields; only drops, resizes and new field drops are committed to the session.
package canvas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/designer"
	"github.com/checkmarble/form-designer/usecases/geometry"
	"github.com/checkmarble/form-designer/utils"
)

// FieldStore is the part of a designer session the controller works with.
type FieldStore interface {
	Field(id string) (models.Field, bool)
	Fields() []models.Field
	UpdateField(id string, update models.FieldUpdate)
	AddField(input designer.AddFieldInput) (models.Field, error)
}

// Gesture is a drag in progress. Offset is the position of the pointer relative to the field origin when the
// drag started.
type Gesture struct {
	Id        string          `json:"id"`
	FieldId   string          `json:"fieldId"`
	Device    models.Device   `json:"device"`
	Offset    models.Position `json:"offset"`
	Preview   models.Position `json:"preview"`
	StartedAt time.Time       `json:"startedAt"`
}

type InteractionController struct {
	mu       sync.Mutex
	store    FieldStore
	gestures map[string]Gesture
}

func NewInteractionController(store FieldStore) *InteractionController {
	return &InteractionController{
		store:    store,
		gestures: make(map[string]Gesture),
	}
}

func (c *InteractionController) BeginDrag(
	ctx context.Context,
	fieldId string,
	device models.Device,
	pointer models.Position,
) (gesture Gesture, err error) {
	defer c.recoverGesture(ctx, "", &err)

	if _, err := models.DeviceFromString(string(device)); err != nil {
		return Gesture{}, err
	}
	field, ok := c.store.Field(fieldId)
	if !ok {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "drag abandoned, unknown field", "field_id", fieldId)
		return Gesture{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}

	layout := field.Layout(device)
	gesture = Gesture{
		Id:      uuid.NewString(),
		FieldId: fieldId,
		Device:  device,
		Offset: models.Position{
			X: pointer.X - layout.Position.X,
			Y: pointer.Y - layout.Position.Y,
		},
		Preview:   layout.Position,
		StartedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.gestures[gesture.Id] = gesture
	c.mu.Unlock()
	return gesture, nil
}

// DragMove returns the snapped position the field would take if dropped here.
func (c *InteractionController) DragMove(
	ctx context.Context,
	gestureId string,
	pointer models.Position,
) (preview models.Position, err error) {
	defer c.recoverGesture(ctx, gestureId, &err)

	gesture, field, err := c.resolve(ctx, gestureId)
	if err != nil {
		return models.Position{}, err
	}

	preview = geometry.ResolveSnap(field, gesture.proposed(pointer), c.store.Fields(), gesture.Device)

	c.mu.Lock()
	if current, ok := c.gestures[gestureId]; ok {
		current.Preview = preview
		c.gestures[gestureId] = current
	}
	c.mu.Unlock()
	return preview, nil
}

// Drop ends the gesture and commits the clamped and snapped layout of the field.
func (c *InteractionController) Drop(
	ctx context.Context,
	gestureId string,
	pointer models.Position,
) (committed models.Field, err error) {
	defer c.recoverGesture(ctx, gestureId, &err)

	gesture, field, err := c.resolve(ctx, gestureId)
	if err != nil {
		return models.Field{}, err
	}
	c.forget(gestureId)

	layout := geometry.CommitLayout(
		field,
		models.DeviceLayout{
			Position: gesture.proposed(pointer),
			Size:     field.Layout(gesture.Device).Size,
		},
		c.store.Fields(),
		gesture.Device,
	)
	return c.commitLayout(field.Id, gesture.Device, layout)
}

func (c *InteractionController) Resize(
	ctx context.Context,
	fieldId string,
	device models.Device,
	size models.Size,
) (committed models.Field, err error) {
	defer c.recoverGesture(ctx, "", &err)

	if _, err := models.DeviceFromString(string(device)); err != nil {
		return models.Field{}, err
	}
	field, ok := c.store.Field(fieldId)
	if !ok {
		return models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}

	layout := field.Layout(device)
	layout.Size = size
	return c.commitLayout(fieldId, device, geometry.ClampLayout(layout, device))
}

// DropNewField creates a field of the given type where the palette item was dropped.
func (c *InteractionController) DropNewField(
	ctx context.Context,
	fieldType models.FieldType,
	device models.Device,
	pointer models.Position,
) (created models.Field, err error) {
	defer c.recoverGesture(ctx, "", &err)

	if _, err := models.DeviceFromString(string(device)); err != nil {
		return models.Field{}, err
	}
	return c.store.AddField(designer.AddFieldInput{
		Type:     fieldType,
		Device:   device,
		Position: &pointer,
	})
}

// Cancel abandons the gesture without committing anything. It reports whether the gesture existed.
func (c *InteractionController) Cancel(gestureId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.gestures[gestureId]
	delete(c.gestures, gestureId)
	return ok
}

func (c *InteractionController) Gesture(gestureId string) (Gesture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gesture, ok := c.gestures[gestureId]
	return gesture, ok
}

func (c *InteractionController) resolve(ctx context.Context, gestureId string) (Gesture, models.Field, error) {
	c.mu.Lock()
	gesture, ok := c.gestures[gestureId]
	c.mu.Unlock()
	if !ok {
		return Gesture{}, models.Field{}, errors.Wrapf(models.ErrUnknownGesture, "%s", gestureId)
	}

	field, ok := c.store.Field(gesture.FieldId)
	if !ok {
		c.forget(gestureId)
		utils.LoggerFromContext(ctx).InfoContext(ctx, "gesture abandoned, the field was deleted",
			"gesture_id", gestureId,
			"field_id", gesture.FieldId)
		return Gesture{}, models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", gesture.FieldId)
	}
	return gesture, field, nil
}

func (c *InteractionController) commitLayout(fieldId string, device models.Device, layout models.DeviceLayout) (models.Field, error) {
	update := models.FieldUpdate{}
	if device == models.DeviceMobile {
		update.Mobile = &layout
	} else {
		update.Desktop = &layout
	}
	c.store.UpdateField(fieldId, update)

	field, ok := c.store.Field(fieldId)
	if !ok {
		return models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}
	return field, nil
}

func (c *InteractionController) forget(gestureId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.gestures, gestureId)
}

// recoverGesture turns a panic during a gesture into an error and abandons the gesture.
func (c *InteractionController) recoverGesture(ctx context.Context, gestureId string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if gestureId != "" {
		c.forget(gestureId)
	}
	*err = errors.Newf("gesture abandoned: %s", fmt.Sprint(r))
	utils.LogAndReportSentryError(ctx, *err)
}

func (g Gesture) proposed(pointer models.Position) models.Position {
	return models.Position{
		X: pointer.X - g.Offset.X,
		Y: pointer.Y - g.Offset.Y,
	}
}
