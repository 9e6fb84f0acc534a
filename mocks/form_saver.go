package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/form-designer/models"
)

type FormSaver struct {
	mock.Mock
}

func (s *FormSaver) SaveForm(ctx context.Context, userId models.UserId, form models.Form) (models.SaveResult, error) {
	args := s.Called(ctx, userId, form)
	return args.Get(0).(models.SaveResult), args.Error(1)
}
