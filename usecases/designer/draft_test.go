package designer

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/form-designer/mocks"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/events"
)

func TestDraft_debounced_until_quiescence(t *testing.T) {
	deps := newTestDependencies(t)
	deps.DraftDebounce = 100 * time.Millisecond
	drafts := new(mocks.DraftRepository)
	saved := make(chan models.Draft, 10)
	drafts.On("SaveDraft", mock.Anything, testUser, mock.Anything).
		Run(func(args mock.Arguments) { saved <- args.Get(2).(models.Draft) }).
		Return(nil)
	deps.DraftRepository = drafts
	s := newTestSession(t, deps)

	field := addField(t, s, models.FieldTypeText)
	for _, label := range []string{"a", "b", "c", "d"} {
		s.UpdateField(field.Id, models.FieldUpdate{Label: null.StringFrom(label)})
	}

	select {
	case draft := <-saved:
		assert.Equal(t, "form-1", draft.FormId)
		require.Len(t, draft.Fields, 1)
		assert.Equal(t, "d", draft.Fields[0].Label)
		assert.Equal(t, testNow, draft.LastModified)
	case <-time.After(2 * time.Second):
		t.Fatal("draft was never persisted")
	}

	select {
	case <-saved:
		t.Fatal("a single draft is written after a burst of mutations")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDraft_publishes_draft_saved(t *testing.T) {
	deps := newTestDependencies(t)
	deps.Broker = events.NewBroker(4)
	sub := deps.Broker.Subscribe(events.DraftSaved)
	s := newTestSession(t, deps)

	addField(t, s, models.FieldTypeText)
	s.Flush(context.Background())

	require.Len(t, sub.Events(), 1)
	assert.Equal(t, "form-1", (<-sub.Events()).FormId)
}

func TestDraft_persistence_failure_is_absorbed(t *testing.T) {
	deps := newTestDependencies(t)
	drafts := new(mocks.DraftRepository)
	drafts.On("SaveDraft", mock.Anything, testUser, mock.Anything).Return(errors.New("quota exceeded"))
	deps.DraftRepository = drafts
	s := newTestSession(t, deps)

	field := addField(t, s, models.FieldTypeText)
	s.Flush(context.Background())
	s.UpdateField(field.Id, models.FieldUpdate{Label: null.StringFrom("still editing")})

	updated, _ := s.Field(field.Id)
	assert.Equal(t, "still editing", updated.Label)
	drafts.AssertNumberOfCalls(t, "SaveDraft", 1)
}

func TestDraft_superseded_by_save(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	s := newTestSession(t, deps)
	addField(t, s, models.FieldTypeText)
	s.Flush(ctx)

	draft, err := deps.DraftRepository.GetDraft(ctx, testUser, "form-1")
	require.NoError(t, err)
	require.NotNil(t, draft)

	s.UpdateSettings(models.SettingsUpdate{BackgroundColor: null.StringFrom("#fafafa")})
	_, err = s.Save(ctx, false)
	require.NoError(t, err)
	assert.False(t, s.ReadModel().HasUnsavedChanges)

	draft, err = deps.DraftRepository.GetDraft(ctx, testUser, "form-1")
	require.NoError(t, err)
	assert.Nil(t, draft)

	reopened, err := OpenSession(ctx, deps, testUser, "form-1")
	require.NoError(t, err)
	t.Cleanup(reopened.Abandon)
	model := reopened.ReadModel()
	assert.False(t, model.HasUnsavedChanges)
	assert.Len(t, model.Fields, 1)
	assert.Equal(t, "#fafafa", model.Settings.BackgroundColor)
	assert.Equal(t, "Inventory", model.Title)
	require.NotNil(t, model.LastSavedAt)
}

func TestOpenSession_prefers_the_draft(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	s := newTestSession(t, deps)
	addField(t, s, models.FieldTypeText)
	_, err := s.Save(ctx, false)
	require.NoError(t, err)

	addField(t, s, models.FieldTypeNumber)
	s.Flush(ctx)

	reopened, err := OpenSession(ctx, deps, testUser, "form-1")
	require.NoError(t, err)
	t.Cleanup(reopened.Abandon)

	model := reopened.ReadModel()
	assert.True(t, model.HasUnsavedChanges)
	assert.Len(t, model.Fields, 2)

	other, err := OpenSession(ctx, deps, "user-2", "form-1")
	require.NoError(t, err)
	t.Cleanup(other.Abandon)
	assert.Len(t, other.ReadModel().Fields, 1, "drafts belong to their user")
}

func TestOpenSession_draft_of_a_never_saved_form(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	s := newTestSession(t, deps)
	addField(t, s, models.FieldTypeDate)
	s.Close(ctx)

	reopened, err := OpenSession(ctx, deps, testUser, "form-1")
	require.NoError(t, err)
	t.Cleanup(reopened.Abandon)
	assert.Len(t, reopened.ReadModel().Fields, 1)
}

func TestOpenSession_draft_keeps_title_and_description(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	s := NewSession(ctx, deps, testUser, NewFormInput{
		FormId:      "form-1",
		Title:       "Stock count",
		Description: "Weekly count of the warehouse shelves",
	})
	t.Cleanup(s.Abandon)
	addField(t, s, models.FieldTypeText)
	s.Close(ctx)

	reopened, err := OpenSession(ctx, deps, testUser, "form-1")
	require.NoError(t, err)
	t.Cleanup(reopened.Abandon)

	model := reopened.ReadModel()
	assert.True(t, model.HasUnsavedChanges)
	assert.Equal(t, "Stock count", model.Title)
	assert.Equal(t, "Weekly count of the warehouse shelves", model.Description)
}

func TestOpenSession_unknown_form(t *testing.T) {
	_, err := OpenSession(context.Background(), newTestDependencies(t), testUser, "nope")
	assert.ErrorIs(t, err, models.NotFoundError)
}

func TestDiscardDraft(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	s := newTestSession(t, deps)
	saved := addField(t, s, models.FieldTypeText)
	_, err := s.Save(ctx, false)
	require.NoError(t, err)

	added := addField(t, s, models.FieldTypeText)
	s.SelectField(added.Id)
	s.Flush(ctx)

	s.DiscardDraft(ctx)

	model := s.ReadModel()
	assert.Equal(t, []string{saved.Id}, ids(model.Fields))
	assert.Nil(t, model.SelectedField)
	assert.False(t, model.HasUnsavedChanges)

	draft, err := deps.DraftRepository.GetDraft(ctx, testUser, "form-1")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDiscardDraft_never_saved_form_becomes_blank(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, newTestDependencies(t))
	addField(t, s, models.FieldTypeText)

	s.DiscardDraft(ctx)

	assert.Empty(t, s.ReadModel().Fields)
}

func TestClose_flushes_then_stops_scheduling(t *testing.T) {
	ctx := context.Background()
	deps := newTestDependencies(t)
	deps.DraftDebounce = 10 * time.Millisecond
	drafts := new(mocks.DraftRepository)
	drafts.On("SaveDraft", mock.Anything, testUser, mock.Anything).Return(nil)
	deps.DraftRepository = drafts
	s := newTestSession(t, deps)
	field := addField(t, s, models.FieldTypeText)

	s.Close(ctx)
	s.UpdateField(field.Id, models.FieldUpdate{Label: null.StringFrom("after close")})
	time.Sleep(50 * time.Millisecond)

	drafts.AssertNumberOfCalls(t, "SaveDraft", 1)
}
