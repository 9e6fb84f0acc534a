package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/form-designer/models"
)

type DraftRepository struct {
	mock.Mock
}

func (r *DraftRepository) GetDraft(ctx context.Context, userId models.UserId, formId string) (*models.Draft, error) {
	args := r.Called(ctx, userId, formId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draft), args.Error(1)
}

func (r *DraftRepository) SaveDraft(ctx context.Context, userId models.UserId, draft models.Draft) error {
	args := r.Called(ctx, userId, draft)
	return args.Error(0)
}

func (r *DraftRepository) DeleteDraft(ctx context.Context, userId models.UserId, formId string) error {
	args := r.Called(ctx, userId, formId)
	return args.Error(0)
}
