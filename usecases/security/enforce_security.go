package security

import (
	"github.com/cockroachdb/errors"

	"github.com/checkmarble/form-designer/models"
)

type EnforceSecurity interface {
	Permission(permission models.Permission) error
	UserId() models.UserId
}

type EnforceSecurityImpl struct {
	Credentials models.Credentials
}

func (e *EnforceSecurityImpl) Permission(permission models.Permission) error {
	if e.Credentials.IsZero() {
		return models.ErrMissingCredentials
	}
	if !e.Credentials.Role.HasPermission(permission) {
		return errors.Wrapf(models.ForbiddenError, "missing permission %s", permission.String())
	}
	return nil
}

func (e *EnforceSecurityImpl) UserId() models.UserId {
	return e.Credentials.UserId
}
