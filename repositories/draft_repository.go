package repositories

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
)

type DraftRepository interface {
	// GetDraft returns nil when the user has no draft for the form.
	GetDraft(ctx context.Context, userId models.UserId, formId string) (*models.Draft, error)
	SaveDraft(ctx context.Context, userId models.UserId, draft models.Draft) error
	DeleteDraft(ctx context.Context, userId models.UserId, formId string) error
}

type draftRepository struct {
	store KeyValueStore
}

func NewDraftRepository(store KeyValueStore) DraftRepository {
	return &draftRepository{store: store}
}

func draftKey(userId models.UserId, formId string) (string, error) {
	if err := models.ValidateIdentifier("user id", string(userId)); err != nil {
		return "", err
	}
	if err := models.ValidateIdentifier("form id", formId); err != nil {
		return "", err
	}
	return Key("drafts", string(userId), formId), nil
}

func (repo *draftRepository) GetDraft(ctx context.Context, userId models.UserId, formId string) (*models.Draft, error) {
	key, err := draftKey(userId, formId)
	if err != nil {
		return nil, err
	}
	draft, err := loadModel[models.Draft](ctx, repo.store, key)
	if errors.Is(err, models.NotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (repo *draftRepository) SaveDraft(ctx context.Context, userId models.UserId, draft models.Draft) error {
	if draft.FormId == "" {
		return models.ErrFormIdRequired
	}
	key, err := draftKey(userId, draft.FormId)
	if err != nil {
		return err
	}
	return saveModel(ctx, repo.store, key, draft)
}

func (repo *draftRepository) DeleteDraft(ctx context.Context, userId models.UserId, formId string) error {
	key, err := draftKey(userId, formId)
	if err != nil {
		return err
	}
	return repo.store.Remove(ctx, key)
}
