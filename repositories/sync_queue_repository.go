package repositories

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
)

const syncQueueKey = "sync_queue"

// SyncQueueRepository persists the whole offline queue under a single global key.
type SyncQueueRepository interface {
	LoadQueue(ctx context.Context) ([]models.SyncAction, error)
	SaveQueue(ctx context.Context, actions []models.SyncAction) error
}

type syncQueueRepository struct {
	store KeyValueStore
}

func NewSyncQueueRepository(store KeyValueStore) SyncQueueRepository {
	return &syncQueueRepository{store: store}
}

func (repo *syncQueueRepository) LoadQueue(ctx context.Context) ([]models.SyncAction, error) {
	actions, err := loadModel[[]models.SyncAction](ctx, repo.store, syncQueueKey)
	if errors.Is(err, models.NotFoundError) {
		return []models.SyncAction{}, nil
	}
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (repo *syncQueueRepository) SaveQueue(ctx context.Context, actions []models.SyncAction) error {
	if actions == nil {
		actions = []models.SyncAction{}
	}
	return saveModel(ctx, repo.store, syncQueueKey, actions)
}
