package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/usecases/security"
	"github.com/checkmarble/form-designer/usecases/syncgateway"
	"github.com/checkmarble/form-designer/utils"
)

type SyncStatus struct {
	Status      models.ConnectionStatus
	QueueLength int
}

type SyncUsecase struct {
	enforceSecurity security.EnforceSecurityForm
	gateway         *syncgateway.Gateway
	formRepository  repositories.FormRepository
}

func (usecase *SyncUsecase) Status(ctx context.Context) (SyncStatus, error) {
	if err := usecase.enforceSecurity.ReadSyncStatus(); err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{
		Status:      usecase.gateway.Status(),
		QueueLength: usecase.gateway.QueueLength(),
	}, nil
}

// SetStatus overrides the status found by the connectivity monitor until its next probe. Setting it to
// connected starts a replay of the offline queue.
func (usecase *SyncUsecase) SetStatus(ctx context.Context, status models.ConnectionStatus) (SyncStatus, error) {
	if err := usecase.enforceSecurity.ManageSync(); err != nil {
		return SyncStatus{}, err
	}
	utils.LoggerFromContext(ctx).InfoContext(ctx, "connection status set manually", "status", status)
	usecase.gateway.SetConnectionStatus(ctx, status)
	return SyncStatus{
		Status:      usecase.gateway.Status(),
		QueueLength: usecase.gateway.QueueLength(),
	}, nil
}

func (usecase *SyncUsecase) Replay(ctx context.Context) (models.ReplayResult, error) {
	if err := usecase.enforceSecurity.ManageSync(); err != nil {
		return models.ReplayResult{}, err
	}
	return usecase.gateway.ProcessQueue(ctx), nil
}

func (usecase *SyncUsecase) Queue(ctx context.Context) ([]models.SyncAction, error) {
	if err := usecase.enforceSecurity.ManageSync(); err != nil {
		return nil, err
	}
	return usecase.gateway.Queue(), nil
}

// SubmitForm records a submission of a saved form. It is pushed to the remote store, or queued.
func (usecase *SyncUsecase) SubmitForm(ctx context.Context, formId string, values map[string]any) (models.Submission, error) {
	if err := usecase.enforceSecurity.CreateSubmission(); err != nil {
		return models.Submission{}, err
	}
	if formId == "" {
		return models.Submission{}, models.ErrFormIdRequired
	}
	if _, err := usecase.formRepository.GetForm(ctx, formId); err != nil {
		return models.Submission{}, errors.Wrapf(err, "could not submit form %s", formId)
	}
	return usecase.gateway.SubmitForm(ctx, usecase.enforceSecurity.UserId(), formId, values)
}

func (usecase *SyncUsecase) ListSubmissions(ctx context.Context, formId string) ([]models.Submission, error) {
	if err := usecase.enforceSecurity.ReadSubmissions(); err != nil {
		return nil, err
	}
	return usecase.gateway.ListSubmissions(ctx, formId)
}
