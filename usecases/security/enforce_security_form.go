package security

import (
	"errors"

	pkgerrors "github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
)

type EnforceSecurityForm interface {
	EnforceSecurity
	ReadForm() error
	CreateForm() error
	// EditForm lets admins edit any form, and builders the forms they own.
	EditForm(ownerId models.UserId) error
	DeleteForm(ownerId models.UserId) error
	CreateSubmission() error
	ReadSubmissions() error
	ReadSyncStatus() error
	ManageSync() error
}

type EnforceSecurityFormImpl struct {
	EnforceSecurity
	Credentials models.Credentials
}

func (e *EnforceSecurityFormImpl) ReadForm() error {
	return e.Permission(models.FORM_READ)
}

func (e *EnforceSecurityFormImpl) CreateForm() error {
	return e.Permission(models.FORM_EDIT)
}

func (e *EnforceSecurityFormImpl) EditForm(ownerId models.UserId) error {
	return errors.Join(
		e.Permission(models.FORM_EDIT),
		e.ownForm(ownerId),
	)
}

func (e *EnforceSecurityFormImpl) DeleteForm(ownerId models.UserId) error {
	return errors.Join(
		e.Permission(models.FORM_DELETE),
		e.ownForm(ownerId),
	)
}

func (e *EnforceSecurityFormImpl) CreateSubmission() error {
	return e.Permission(models.SUBMISSION_CREATE)
}

func (e *EnforceSecurityFormImpl) ReadSubmissions() error {
	return e.Permission(models.SUBMISSION_READ)
}

func (e *EnforceSecurityFormImpl) ReadSyncStatus() error {
	return e.Permission(models.SYNC_READ)
}

func (e *EnforceSecurityFormImpl) ManageSync() error {
	return e.Permission(models.SYNC_MANAGE)
}

func (e *EnforceSecurityFormImpl) ownForm(ownerId models.UserId) error {
	if e.Credentials.Role == models.ADMIN || ownerId == "" || ownerId == e.Credentials.UserId {
		return nil
	}
	return pkgerrors.Wrap(models.ForbiddenError, "form owned by another user")
}
