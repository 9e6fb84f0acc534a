package syncgateway

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/repositories"
)

// errUndecodableAction marks queued actions that can never be replayed, such as a corrupted payload.
var errUndecodableAction = errors.New("undecodable sync action")

func isUndecodable(err error) bool {
	return err != nil && errors.Is(err, errUndecodableAction)
}

// apply performs the remote write of an action. An update of a form the remote store does not know creates it.
func (g *Gateway) apply(ctx context.Context, action models.SyncAction) error {
	remote := g.deps.RemoteFormRepository
	if remote == nil {
		return models.ErrRemoteNotConfigured
	}

	switch action.Type {
	case models.SyncActionSaveForm:
		form, err := decodeForm(action)
		if err != nil {
			return err
		}
		return remote.CreateForm(ctx, form)

	case models.SyncActionUpdateForm:
		form, err := decodeForm(action)
		if err != nil {
			return err
		}
		err = remote.UpdateForm(ctx, action.FormId, form)
		if errors.Is(err, models.NotFoundError) {
			return remote.CreateForm(ctx, form)
		}
		return err

	case models.SyncActionDeleteForm:
		return remote.DeleteForm(ctx, action.FormId)

	case models.SyncActionSaveSubmission:
		submission, err := decodeSubmission(action)
		if err != nil {
			return err
		}
		return remote.CreateSubmission(ctx, submission)
	}

	return errors.Mark(errors.Wrapf(models.ErrUnknownSyncAction, "%q", action.Type), errUndecodableAction)
}

func decodeForm(action models.SyncAction) (models.Form, error) {
	form, err := repositories.DecodeForm(action.Data)
	if err != nil {
		return models.Form{}, errors.Mark(errors.Wrapf(err, "could not decode action %s", action.Id), errUndecodableAction)
	}
	return form, nil
}

func decodeSubmission(action models.SyncAction) (models.Submission, error) {
	var submission models.Submission
	if err := json.Unmarshal(action.Data, &submission); err != nil {
		return models.Submission{}, errors.Mark(errors.Wrapf(err, "could not decode action %s", action.Id), errUndecodableAction)
	}
	return submission, nil
}
