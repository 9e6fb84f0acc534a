package repositories

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// KeyValueStore is the single persistence port of the designer. Every local write (drafts, forms, offline queue,
// submissions) goes through it, so that the backend (redis, disk, memory) can be swapped.
// Get returns models.NotFoundError when the key is absent; Remove of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Key builds a namespaced key: Key("drafts", userId, formId) gives "drafts:<userId>:<formId>".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func loadModel[T any](ctx context.Context, store KeyValueStore, key string) (T, error) {
	var model T

	data, err := store.Get(ctx, key)
	if err != nil {
		return model, err
	}
	if err := json.Unmarshal(data, &model); err != nil {
		return model, errors.Wrapf(err, "could not decode value of key %s", key)
	}
	return model, nil
}

func saveModel(ctx context.Context, store KeyValueStore, key string, model any) error {
	marshalled, err := json.Marshal(model)
	if err != nil {
		return errors.Wrapf(err, "could not encode value of key %s", key)
	}
	return store.Set(ctx, key, marshalled)
}
