package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/form-designer/models"
)

type RemoteFormRepository struct {
	mock.Mock
}

func (r *RemoteFormRepository) CreateForm(ctx context.Context, form models.Form) error {
	args := r.Called(ctx, form)
	return args.Error(0)
}

func (r *RemoteFormRepository) UpdateForm(ctx context.Context, formId string, form models.Form) error {
	args := r.Called(ctx, formId, form)
	return args.Error(0)
}

func (r *RemoteFormRepository) DeleteForm(ctx context.Context, formId string) error {
	args := r.Called(ctx, formId)
	return args.Error(0)
}

func (r *RemoteFormRepository) CreateSubmission(ctx context.Context, submission models.Submission) error {
	args := r.Called(ctx, submission)
	return args.Error(0)
}

func (r *RemoteFormRepository) Ping(ctx context.Context) error {
	args := r.Called(ctx)
	return args.Error(0)
}
