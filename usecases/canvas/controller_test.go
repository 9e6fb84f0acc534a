package canvas

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/form-designer/mocks"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/designer"
)

func newTestSession(t *testing.T) *designer.DesignerSession {
	t.Helper()
	drafts := new(mocks.DraftRepository)
	drafts.On("SaveDraft", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s := designer.NewSession(context.Background(), designer.Dependencies{
		DraftRepository: drafts,
		DraftDebounce:   time.Hour,
	}, "user-1", designer.NewFormInput{FormId: "form-1"})
	t.Cleanup(s.Abandon)
	return s
}

func addText(t *testing.T, s *designer.DesignerSession, x, y int) models.Field {
	t.Helper()
	field, err := s.AddField(designer.AddFieldInput{
		Type:     models.FieldTypeText,
		Device:   models.DeviceDesktop,
		Position: &models.Position{X: x, Y: y},
	})
	require.NoError(t, err)
	return field
}

func TestDrag_preview_does_not_mutate(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	addText(t, s, 400, 100)
	moving := addText(t, s, 0, 400)
	c := NewInteractionController(s)

	gesture, err := c.BeginDrag(ctx, moving.Id, models.DeviceDesktop, models.Position{X: 10, Y: 410})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 10, Y: 10}, gesture.Offset)

	preview, err := c.DragMove(ctx, gesture.Id, models.Position{X: 422, Y: 310})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 400, Y: 300}, preview)

	stored, _ := s.Field(moving.Id)
	assert.Equal(t, moving.Desktop, stored.Desktop)
	current, ok := c.Gesture(gesture.Id)
	require.True(t, ok)
	assert.Equal(t, preview, current.Preview)
}

func TestDrop_commits_the_snapped_layout(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	addText(t, s, 400, 100)
	moving := addText(t, s, 0, 400)
	c := NewInteractionController(s)

	gesture, err := c.BeginDrag(ctx, moving.Id, models.DeviceDesktop, models.Position{X: 0, Y: 400})
	require.NoError(t, err)

	dropped, err := c.Drop(ctx, gesture.Id, models.Position{X: 5000, Y: 168})
	require.NoError(t, err)

	assert.Equal(t, models.Position{X: 890, Y: 160}, dropped.Desktop.Position)
	assert.Equal(t, moving.Mobile, dropped.Mobile, "the other device is untouched")
	assert.True(t, s.ReadModel().HasUnsavedChanges)

	_, ok := c.Gesture(gesture.Id)
	assert.False(t, ok)
	_, err = c.Drop(ctx, gesture.Id, models.Position{})
	assert.ErrorIs(t, err, models.NotFoundError)
}

func TestBeginDrag_unknown_field(t *testing.T) {
	c := NewInteractionController(newTestSession(t))

	_, err := c.BeginDrag(context.Background(), "missing", models.DeviceMobile, models.Position{})

	assert.ErrorIs(t, err, models.NotFoundError)
}

func TestDrag_of_a_deleted_field_is_abandoned(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	field := addText(t, s, 100, 100)
	c := NewInteractionController(s)
	gesture, err := c.BeginDrag(ctx, field.Id, models.DeviceDesktop, models.Position{X: 100, Y: 100})
	require.NoError(t, err)

	s.DeleteField(field.Id)
	_, err = c.DragMove(ctx, gesture.Id, models.Position{X: 200, Y: 200})

	assert.ErrorIs(t, err, models.NotFoundError)
	_, ok := c.Gesture(gesture.Id)
	assert.False(t, ok)
	assert.Empty(t, s.Fields())
}

func TestResize_is_clamped(t *testing.T) {
	s := newTestSession(t)
	field := addText(t, s, 100, 100)
	c := NewInteractionController(s)

	resized, err := c.Resize(context.Background(), field.Id, models.DeviceMobile, models.Size{Width: 1000, Height: 10})

	require.NoError(t, err)
	assert.Equal(t, models.Size{Width: 345, Height: 40}, resized.Mobile.Size)
	assert.Equal(t, field.Desktop, resized.Desktop)
}

func TestDropNewField(t *testing.T) {
	s := newTestSession(t)
	c := NewInteractionController(s)

	created, err := c.DropNewField(context.Background(), models.FieldTypeGeolocation, models.DeviceMobile,
		models.Position{X: 100, Y: 900})

	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 20, Y: 667 - 80 - 10}, created.Mobile.Position)
	assert.Len(t, s.Fields(), 1)

	_, err = c.DropNewField(context.Background(), models.FieldTypeText, "tablet", models.Position{})
	assert.ErrorIs(t, err, models.BadParameterError)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	field := addText(t, s, 100, 100)
	c := NewInteractionController(s)
	gesture, err := c.BeginDrag(ctx, field.Id, models.DeviceDesktop, models.Position{X: 100, Y: 100})
	require.NoError(t, err)

	assert.True(t, c.Cancel(gesture.Id))
	assert.False(t, c.Cancel(gesture.Id))

	stored, _ := s.Field(field.Id)
	assert.Equal(t, field.Desktop, stored.Desktop)
}

type panickingStore struct {
	*designer.DesignerSession
}

func (panickingStore) Fields() []models.Field {
	panic("drop target resolution failed")
}

func TestGesture_panic_is_recovered(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	field := addText(t, s, 100, 100)
	c := NewInteractionController(panickingStore{s})
	gesture, err := c.BeginDrag(ctx, field.Id, models.DeviceDesktop, models.Position{X: 100, Y: 100})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = c.Drop(ctx, gesture.Id, models.Position{X: 300, Y: 300})
	})

	assert.ErrorContains(t, err, "gesture abandoned")
	_, ok := c.Gesture(gesture.Id)
	assert.False(t, ok)
	stored, _ := s.Field(field.Id)
	assert.Equal(t, field.Desktop, stored.Desktop)
}
