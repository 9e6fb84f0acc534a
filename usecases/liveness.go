package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
)

const livenessKey = "liveness"

type LivenessUsecase struct {
	store repositories.KeyValueStore
}

// Liveness reads a key from the local store. An absent key still proves the store answers.
func (u *LivenessUsecase) Liveness(ctx context.Context) error {
	_, err := u.store.Get(ctx, livenessKey)
	if err != nil && !errors.Is(err, models.NotFoundError) {
		return errors.Wrap(err, "local store is not reachable")
	}
	return nil
}
