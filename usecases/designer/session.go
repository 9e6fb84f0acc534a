// Package designer holds the in-memory state of a form being designed: the ordered fields, the form settings and
// the selection. Every mutation goes through a DesignerSession, which clamps layouts, marks the form dirty and
// schedules a draft snapshot.
package designer

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/mohae/deepcopy"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/repositories/clock"
	"github.com/checkmarble/form-designer/usecases/events"
	"github.com/checkmarble/form-designer/usecases/geometry"
	"github.com/checkmarble/form-designer/utils"
)

const DefaultDraftDebounce = 3 * time.Second

// FormSaver commits a form locally and pushes it to the remote store, or queues it.
type FormSaver interface {
	SaveForm(ctx context.Context, userId models.UserId, form models.Form) (models.SaveResult, error)
}

type Dependencies struct {
	DraftRepository repositories.DraftRepository
	FormRepository  repositories.FormRepository
	Saver           FormSaver
	Clock           clock.Clock
	// Broker is optional.
	Broker        *events.Broker
	DraftDebounce time.Duration
}

type NewFormInput struct {
	// FormId is generated when empty.
	FormId      string
	Title       string
	Description string
}

type AddFieldInput struct {
	Type  models.FieldType
	Label string
	// Position, when set, places the field on Device instead of cascading below the last field.
	Device   models.Device
	Position *models.Position
}

type ReadModel struct {
	FormId            string              `json:"formId"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Fields            []models.Field      `json:"fields"`
	Settings          models.FormSettings `json:"formSettings"`
	HasUnsavedChanges bool                `json:"hasUnsavedChanges"`
	LastSavedAt       *time.Time          `json:"lastSavedAt"`
	SelectedField     *models.Field       `json:"selectedField"`
}

type DesignerSession struct {
	// mu guards the in-memory state. ioMu serializes draft writes, saves and discards, which must never
	// run concurrently for the same form.
	mu   sync.Mutex
	ioMu sync.Mutex

	// ctx carries the logger and credentials of the request that opened the session, for the timer callbacks.
	ctx    context.Context
	userId models.UserId
	formId string

	title       string
	description string
	ownerId     models.UserId
	createdAt   time.Time
	fields      []models.Field
	settings    models.FormSettings
	selectedId  string
	dirty       bool
	version     uint64
	lastSavedAt *time.Time

	draftTimer      *time.Timer
	draftGeneration uint64
	closed          bool

	deps Dependencies
}

func newSession(ctx context.Context, deps Dependencies, userId models.UserId, formId string) *DesignerSession {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.DraftDebounce <= 0 {
		deps.DraftDebounce = DefaultDraftDebounce
	}
	return &DesignerSession{
		ctx:      context.WithoutCancel(ctx),
		userId:   userId,
		formId:   formId,
		ownerId:  userId,
		fields:   []models.Field{},
		settings: models.DefaultFormSettings(),
		deps:     deps,
	}
}

// NewSession starts the design of a form that was never saved.
func NewSession(ctx context.Context, deps Dependencies, userId models.UserId, input NewFormInput) *DesignerSession {
	formId := input.FormId
	if formId == "" {
		formId = newId()
	}
	s := newSession(ctx, deps, userId, formId)
	s.title = input.Title
	s.description = input.Description
	return s
}

// OpenSession loads a form for editing. A draft of the user takes precedence over the saved form and leaves the
// session dirty. Without draft nor saved form, it returns models.NotFoundError.
func OpenSession(ctx context.Context, deps Dependencies, userId models.UserId, formId string) (*DesignerSession, error) {
	s := newSession(ctx, deps, userId, formId)
	logger := utils.LoggerFromContext(ctx)

	form, err := deps.FormRepository.GetForm(ctx, formId)
	formFound := err == nil
	if err != nil && !errors.Is(err, models.NotFoundError) {
		return nil, errors.Wrapf(err, "could not load form %s", formId)
	}

	draft, err := deps.DraftRepository.GetDraft(ctx, userId, formId)
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not load draft of form %s", formId))
		draft = nil
	}

	if !formFound && draft == nil {
		return nil, errors.Wrapf(models.NotFoundError, "form %s", formId)
	}

	if formFound {
		s.loadForm(form)
	}
	if draft != nil {
		logger.DebugContext(ctx, "designer session restored from draft",
			"form_id", formId,
			"last_modified", draft.LastModified)
		s.fields = NormalizeFields(draft.Fields)
		s.settings = draft.Settings.Normalized()
		if draft.Title != "" {
			s.title = draft.Title
		}
		if draft.Description != "" {
			s.description = draft.Description
		}
		s.dirty = true
	}
	return s, nil
}

// loadForm replaces the state by the saved form. Caller holds mu or owns the session exclusively.
func (s *DesignerSession) loadForm(form models.Form) {
	s.title = form.Title
	s.description = form.Description
	if form.OwnerId != "" {
		s.ownerId = form.OwnerId
	}
	s.createdAt = form.CreatedAt
	s.fields = NormalizeFields(form.Fields)
	s.settings = form.Settings.Normalized()
	s.selectedId = ""
	s.dirty = false
	if !form.UpdatedAt.IsZero() {
		savedAt := form.UpdatedAt
		s.lastSavedAt = &savedAt
	}
}

func (s *DesignerSession) FormId() string {
	return s.formId
}

func (s *DesignerSession) UserId() models.UserId {
	return s.userId
}

func (s *DesignerSession) OwnerId() models.UserId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerId
}

func (s *DesignerSession) AddField(input AddFieldInput) (models.Field, error) {
	if _, err := models.FieldTypeFromString(string(input.Type)); err != nil {
		return models.Field{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	field := models.Field{
		Id:     newId(),
		Type:   input.Type,
		Label:  input.Label,
		Config: models.DefaultFieldConfig(input.Type),
	}
	if field.Label == "" {
		field.Label = defaultLabel(input.Type)
	}

	for _, device := range models.Devices {
		var previous *models.DeviceLayout
		if len(s.fields) > 0 {
			last := s.fields[len(s.fields)-1].Layout(device)
			previous = &last
		}
		layout := geometry.DefaultLayout(input.Type, device, previous)
		if input.Position != nil && device == input.Device {
			layout.Position = *input.Position
			layout = geometry.ClampLayout(layout, device)
		}
		field.SetLayout(device, layout)
	}

	s.fields = append(s.fields, field)
	s.touch()
	return copyField(field), nil
}

// UpdateField merges the update into the field. Layouts are clamped to their device, a config that does not
// belong to the field type is ignored, and changing the type resets the config. Unknown ids are ignored.
func (s *DesignerSession) UpdateField(id string, update models.FieldUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	field := s.fields[i]

	if update.Type != nil && *update.Type != field.Type {
		if _, err := models.FieldTypeFromString(string(*update.Type)); err == nil {
			field.Type = *update.Type
			field.Config = models.DefaultFieldConfig(field.Type)
		}
	}
	if update.Label.Valid {
		field.Label = update.Label.String
	}
	if update.Placeholder.Valid {
		field.Placeholder = update.Placeholder.String
	}
	assignBool(&field.Required, update.Required)
	assignBool(&field.Readonly, update.Readonly)
	assignBool(&field.Hidden, update.Hidden)
	assignBool(&field.Permanent, update.Permanent)

	if update.Config != nil {
		if models.ConfigMatchesType(field.Type, update.Config) {
			field.Config = models.NormalizeFieldConfig(deepcopy.Copy(update.Config).(models.FieldConfig))
		} else {
			utils.LoggerFromContext(s.ctx).Debug("config ignored, it does not match the field type",
				"field_id", id,
				"field_type", field.Type)
		}
	}
	if update.Desktop != nil {
		field.Desktop = geometry.ClampLayout(*update.Desktop, models.DeviceDesktop)
	}
	if update.Mobile != nil {
		field.Mobile = geometry.ClampLayout(*update.Mobile, models.DeviceMobile)
	}

	s.fields[i] = field
	s.touch()
}

func assignBool(target *bool, value null.Bool) {
	if value.Valid {
		*target = value.Bool
	}
}

func (s *DesignerSession) DeleteField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.fields = slices.Delete(s.fields, i, i+1)
	if s.selectedId == id {
		s.selectedId = ""
	}
	s.touch()
}

// SelectField selects the field, or clears the selection when the id is unknown or empty.
func (s *DesignerSession) SelectField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		s.selectedId = ""
		return
	}
	s.selectedId = id
}

func (s *DesignerSession) UpdateSettings(update models.SettingsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = s.settings.Apply(update)
	s.touch()
}

// AvailableFormulaFields lists the number fields a formula of excludeId may reference, in insertion order.
func (s *DesignerSession) AvailableFormulaFields(excludeId string) []models.Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Field, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Type == models.FieldTypeNumber && f.Id != excludeId {
			out = append(out, copyField(f))
		}
	}
	return out
}

func (s *DesignerSession) Field(id string) (models.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Field{}, false
	}
	return copyField(s.fields[i]), true
}

func (s *DesignerSession) Fields() []models.Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyFields(s.fields)
}

func (s *DesignerSession) ReadModel() ReadModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := ReadModel{
		FormId:            s.formId,
		Title:             s.title,
		Description:       s.description,
		Fields:            copyFields(s.fields),
		Settings:          s.settings,
		HasUnsavedChanges: s.dirty,
	}
	if s.lastSavedAt != nil {
		savedAt := *s.lastSavedAt
		model.LastSavedAt = &savedAt
	}
	if i := s.indexOf(s.selectedId); i >= 0 {
		selected := copyField(s.fields[i])
		model.SelectedField = &selected
	}
	return model
}

// Save commits a snapshot of the form through the saver and clears the draft. An autosave without unsaved
// changes does nothing. Mutations made while the save is in flight stay unsaved.
func (s *DesignerSession) Save(ctx context.Context, isAutoSave bool) (models.SaveResult, error) {
	ctx = context.WithoutCancel(ctx)
	logger := utils.LoggerFromContext(ctx)

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	if isAutoSave && !s.dirty {
		s.mu.Unlock()
		logger.DebugContext(ctx, "autosave skipped, no unsaved changes", "form_id", s.formId)
		return models.SaveResult{FormId: s.formId}, nil
	}
	s.cancelDraftLocked()
	now := s.deps.Clock.Now()
	form := s.formSnapshotLocked(now)
	version := s.version
	s.mu.Unlock()

	result, err := s.deps.Saver.SaveForm(ctx, s.userId, form)
	if err != nil {
		s.mu.Lock()
		if s.dirty {
			s.scheduleDraftLocked()
		}
		s.mu.Unlock()
		return models.SaveResult{}, errors.Wrapf(err, "could not save form %s", s.formId)
	}

	s.mu.Lock()
	s.lastSavedAt = &now
	s.createdAt = form.CreatedAt
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()

	s.deleteDraft(ctx)
	logger.InfoContext(ctx, "form saved",
		"form_id", s.formId,
		"autosave", isAutoSave,
		"synced", result.Synced,
		"queued", result.Queued)
	return result, nil
}

// Reset empties the form in memory: no field, default settings, no selection. A pending draft snapshot is
// cancelled, an already persisted draft is kept.
func (s *DesignerSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelDraftLocked()
	s.fields = []models.Field{}
	s.settings = models.DefaultFormSettings()
	s.selectedId = ""
	s.dirty = false
	s.version++
}

// DiscardDraft deletes the draft and reloads the saved form, or a blank form if it was never saved.
func (s *DesignerSession) DiscardDraft(ctx context.Context) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	s.cancelDraftLocked()
	s.mu.Unlock()

	s.deleteDraft(ctx)

	form, err := s.deps.FormRepository.GetForm(ctx, s.formId)
	if err != nil && !errors.Is(err, models.NotFoundError) {
		utils.LogAndReportSentryError(ctx, errors.Wrapf(err, "could not reload form %s", s.formId))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.loadForm(form)
	} else {
		s.fields = []models.Field{}
		s.settings = models.DefaultFormSettings()
		s.selectedId = ""
		s.dirty = false
	}
	s.version++
}

// ClearDraft deletes the draft without touching the in-memory state.
func (s *DesignerSession) ClearDraft(ctx context.Context) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	s.cancelDraftLocked()
	s.mu.Unlock()

	s.deleteDraft(ctx)
}

func (s *DesignerSession) formSnapshotLocked(now time.Time) models.Form {
	createdAt := s.createdAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return models.Form{
		Id:          s.formId,
		Title:       s.title,
		Description: s.description,
		OwnerId:     s.ownerId,
		Fields:      copyFields(s.fields),
		Settings:    s.settings,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}
}

// touch is called, with mu held, by every mutation of the form.
func (s *DesignerSession) touch() {
	s.dirty = true
	s.version++
	s.scheduleDraftLocked()
}

func (s *DesignerSession) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.fields, func(f models.Field) bool { return f.Id == id })
}

func newId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func defaultLabel(fieldType models.FieldType) string {
	switch fieldType {
	case models.FieldTypeProductLookup:
		return "Product lookup"
	case models.FieldTypeQr:
		return "QR code"
	case models.FieldTypeQrProductScanner:
		return "Product scanner"
	case models.FieldTypeDatetime:
		return "Date and time"
	}
	label := []rune(string(fieldType))
	if len(label) > 0 && label[0] >= 'a' && label[0] <= 'z' {
		label[0] -= 'a' - 'A'
	}
	return string(label)
}

func copyField(field models.Field) models.Field {
	return deepcopy.Copy(field).(models.Field)
}

func copyFields(fields []models.Field) []models.Field {
	if fields == nil {
		return []models.Field{}
	}
	return deepcopy.Copy(fields).([]models.Field)
}
