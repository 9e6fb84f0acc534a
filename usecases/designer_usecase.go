package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/usecases/canvas"
	"github.com/checkmarble/form-designer/usecases/designer"
	"github.com/checkmarble/form-designer/usecases/security"
	"github.com/checkmarble/form-designer/usecases/syncgateway"
	"github.com/checkmarble/form-designer/utils"
)

type DesignerUsecase struct {
	enforceSecurity security.EnforceSecurityForm
	sessions        *SessionRegistry
	gateway         *syncgateway.Gateway
	deps            designer.Dependencies
	formRepository  repositories.FormRepository
}

// CreateForm opens a session on a new form. The form is only written to the stores on its first draft or save.
func (usecase *DesignerUsecase) CreateForm(ctx context.Context, input designer.NewFormInput) (designer.ReadModel, error) {
	if err := usecase.enforceSecurity.CreateForm(); err != nil {
		return designer.ReadModel{}, err
	}
	userId := usecase.enforceSecurity.UserId()

	if input.FormId != "" {
		_, err := usecase.formRepository.GetForm(ctx, input.FormId)
		if err == nil {
			return designer.ReadModel{}, errors.Wrapf(models.ConflictError, "form %s already exists", input.FormId)
		}
		if !errors.Is(err, models.NotFoundError) {
			return designer.ReadModel{}, err
		}
	}

	session := designer.NewSession(ctx, usecase.deps, userId, input)
	if _, ok := usecase.sessions.add(session); !ok {
		session.Abandon()
		return designer.ReadModel{}, errors.Wrapf(models.ConflictError, "form %s is already open", session.FormId())
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "form created", "form_id", session.FormId())
	return session.ReadModel(), nil
}

// OpenForm returns the read model of the form, restoring the draft of the user when there is one.
func (usecase *DesignerUsecase) OpenForm(ctx context.Context, formId string) (designer.ReadModel, error) {
	entry, err := usecase.open(ctx, formId)
	if err != nil {
		return designer.ReadModel{}, err
	}
	return entry.session.ReadModel(), nil
}

func (usecase *DesignerUsecase) AddField(ctx context.Context, formId string, input designer.AddFieldInput) (models.Field, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	return entry.session.AddField(input)
}

func (usecase *DesignerUsecase) UpdateField(
	ctx context.Context,
	formId, fieldId string,
	update models.FieldUpdate,
) (models.Field, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	if _, ok := entry.session.Field(fieldId); !ok {
		return models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}

	entry.session.UpdateField(fieldId, update)
	field, ok := entry.session.Field(fieldId)
	if !ok {
		return models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}
	return field, nil
}

// DeleteField is idempotent: deleting an unknown field succeeds.
func (usecase *DesignerUsecase) DeleteField(ctx context.Context, formId, fieldId string) error {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return err
	}
	entry.session.DeleteField(fieldId)
	return nil
}

func (usecase *DesignerUsecase) SelectField(ctx context.Context, formId, fieldId string) (designer.ReadModel, error) {
	entry, err := usecase.open(ctx, formId)
	if err != nil {
		return designer.ReadModel{}, err
	}
	entry.session.SelectField(fieldId)
	return entry.session.ReadModel(), nil
}

func (usecase *DesignerUsecase) AvailableFormulaFields(ctx context.Context, formId, excludeId string) ([]models.Field, error) {
	entry, err := usecase.open(ctx, formId)
	if err != nil {
		return nil, err
	}
	return entry.session.AvailableFormulaFields(excludeId), nil
}

func (usecase *DesignerUsecase) UpdateSettings(
	ctx context.Context,
	formId string,
	update models.SettingsUpdate,
) (models.FormSettings, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.FormSettings{}, err
	}
	entry.session.UpdateSettings(update)
	return entry.session.ReadModel().Settings, nil
}

// SaveForm commits the form locally and syncs it. A save queued for a later sync is still a success.
func (usecase *DesignerUsecase) SaveForm(ctx context.Context, formId string, isAutoSave bool) (models.SaveResult, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.SaveResult{}, err
	}
	return entry.session.Save(ctx, isAutoSave)
}

func (usecase *DesignerUsecase) ResetForm(ctx context.Context, formId string) (designer.ReadModel, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return designer.ReadModel{}, err
	}
	entry.session.Reset()
	return entry.session.ReadModel(), nil
}

func (usecase *DesignerUsecase) DiscardDraft(ctx context.Context, formId string) (designer.ReadModel, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return designer.ReadModel{}, err
	}
	entry.session.DiscardDraft(ctx)
	return entry.session.ReadModel(), nil
}

// DeleteForm closes the sessions open on the form without writing their drafts, then deletes it locally and
// remotely.
func (usecase *DesignerUsecase) DeleteForm(ctx context.Context, formId string) (models.SaveResult, error) {
	ownerId, err := usecase.ownerOf(ctx, formId)
	if err != nil {
		return models.SaveResult{}, err
	}
	if err := usecase.enforceSecurity.DeleteForm(ownerId); err != nil {
		return models.SaveResult{}, err
	}

	usecase.sessions.forget(formId)
	result, err := usecase.gateway.DeleteForm(ctx, usecase.enforceSecurity.UserId(), formId)
	if err != nil {
		return models.SaveResult{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "form deleted", "form_id", formId, "synced", result.Synced)
	return result, nil
}

func (usecase *DesignerUsecase) BeginDrag(
	ctx context.Context,
	formId, fieldId string,
	device models.Device,
	pointer models.Position,
) (canvas.Gesture, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return canvas.Gesture{}, err
	}
	return entry.canvas.BeginDrag(ctx, fieldId, device, pointer)
}

func (usecase *DesignerUsecase) DragMove(
	ctx context.Context,
	formId, gestureId string,
	pointer models.Position,
) (models.Position, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Position{}, err
	}
	return entry.canvas.DragMove(ctx, gestureId, pointer)
}

func (usecase *DesignerUsecase) Drop(
	ctx context.Context,
	formId, gestureId string,
	pointer models.Position,
) (models.Field, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	return entry.canvas.Drop(ctx, gestureId, pointer)
}

func (usecase *DesignerUsecase) CancelGesture(ctx context.Context, formId, gestureId string) error {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return err
	}
	if !entry.canvas.Cancel(gestureId) {
		return errors.Wrapf(models.ErrUnknownGesture, "%s", gestureId)
	}
	return nil
}

func (usecase *DesignerUsecase) Resize(
	ctx context.Context,
	formId, fieldId string,
	device models.Device,
	size models.Size,
) (models.Field, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	return entry.canvas.Resize(ctx, fieldId, device, size)
}

func (usecase *DesignerUsecase) DropNewField(
	ctx context.Context,
	formId string,
	fieldType models.FieldType,
	device models.Device,
	pointer models.Position,
) (models.Field, error) {
	entry, err := usecase.edit(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	return entry.canvas.DropNewField(ctx, fieldType, device, pointer)
}

// open returns the session of the user on the form, loading it from its draft or saved version if needed.
func (usecase *DesignerUsecase) open(ctx context.Context, formId string) (*openSession, error) {
	if formId == "" {
		return nil, models.ErrFormIdRequired
	}
	if err := usecase.enforceSecurity.ReadForm(); err != nil {
		return nil, err
	}
	userId := usecase.enforceSecurity.UserId()

	return usecase.sessions.getOrOpen(userId, formId, func() (*designer.DesignerSession, error) {
		return designer.OpenSession(ctx, usecase.deps, userId, formId)
	})
}

func (usecase *DesignerUsecase) edit(ctx context.Context, formId string) (*openSession, error) {
	entry, err := usecase.open(ctx, formId)
	if err != nil {
		return nil, err
	}
	if err := usecase.enforceSecurity.EditForm(entry.session.OwnerId()); err != nil {
		return nil, err
	}
	return entry, nil
}

// ownerOf reads the owner from the saved form, or from the session of the user for a form never saved.
func (usecase *DesignerUsecase) ownerOf(ctx context.Context, formId string) (models.UserId, error) {
	if formId == "" {
		return "", models.ErrFormIdRequired
	}
	form, err := usecase.formRepository.GetForm(ctx, formId)
	if err == nil {
		return form.OwnerId, nil
	}
	if !errors.Is(err, models.NotFoundError) {
		return "", err
	}
	if entry, ok := usecase.sessions.get(usecase.enforceSecurity.UserId(), formId); ok {
		return entry.session.OwnerId(), nil
	}
	return "", errors.Wrapf(models.NotFoundError, "form %s", formId)
}

func (usecase *DesignerUsecase) GetField(ctx context.Context, formId, fieldId string) (models.Field, error) {
	entry, err := usecase.open(ctx, formId)
	if err != nil {
		return models.Field{}, err
	}
	field, ok := entry.session.Field(fieldId)
	if !ok {
		return models.Field{}, errors.Wrapf(models.NotFoundError, "field %s", fieldId)
	}
	return field, nil
}
