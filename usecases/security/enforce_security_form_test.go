package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/checkmarble/form-designer/models"
)

func enforcer(role models.Role) EnforceSecurityForm {
	creds := models.Credentials{UserId: "principal", Role: role}
	return &EnforceSecurityFormImpl{
		EnforceSecurity: &EnforceSecurityImpl{Credentials: creds},
		Credentials:     creds,
	}
}

func TestEditForm(t *testing.T) {
	tts := []struct {
		name    string
		role    models.Role
		owner   models.UserId
		allowed bool
	}{
		{"builder edits own form", models.BUILDER, "principal", true},
		{"builder edits a new form", models.BUILDER, "", true},
		{"builder cannot edit someone else's form", models.BUILDER, "other", false},
		{"admin edits any form", models.ADMIN, "other", true},
		{"viewer cannot edit", models.VIEWER, "principal", false},
		{"no role cannot edit", models.NO_ROLE, "principal", false},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			err := enforcer(tt.role).EditForm(tt.owner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, models.ForbiddenError)
			}
		})
	}
}

func TestPermissions(t *testing.T) {
	viewer := enforcer(models.VIEWER)
	assert.NoError(t, viewer.ReadForm())
	assert.NoError(t, viewer.CreateSubmission())
	assert.ErrorIs(t, viewer.ReadSubmissions(), models.ForbiddenError)
	assert.ErrorIs(t, viewer.CreateForm(), models.ForbiddenError)

	builder := enforcer(models.BUILDER)
	assert.NoError(t, builder.CreateForm())
	assert.ErrorIs(t, builder.DeleteForm("principal"), models.ForbiddenError)
	assert.ErrorIs(t, builder.ManageSync(), models.ForbiddenError)

	admin := enforcer(models.ADMIN)
	assert.NoError(t, admin.DeleteForm("other"))
	assert.NoError(t, admin.ManageSync())
}

func TestMissingCredentials(t *testing.T) {
	e := &EnforceSecurityFormImpl{EnforceSecurity: &EnforceSecurityImpl{}}

	assert.ErrorIs(t, e.ReadForm(), models.UnAuthorizedError)
}
