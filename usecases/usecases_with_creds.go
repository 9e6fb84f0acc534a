package usecases

import (
	"context"
	"log/slog"

	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/usecases/security"
)

type UsecasesWithCreds struct {
	Usecases
	Credentials models.Credentials
	Logger      *slog.Logger
	Context     context.Context
}

func (usecases *UsecasesWithCreds) NewEnforceSecurity() security.EnforceSecurity {
	return &security.EnforceSecurityImpl{
		Credentials: usecases.Credentials,
	}
}

func (usecases *UsecasesWithCreds) NewEnforceFormSecurity() security.EnforceSecurityForm {
	return &security.EnforceSecurityFormImpl{
		EnforceSecurity: usecases.NewEnforceSecurity(),
		Credentials:     usecases.Credentials,
	}
}

func (usecases *UsecasesWithCreds) NewDesignerUsecase() DesignerUsecase {
	return DesignerUsecase{
		enforceSecurity: usecases.NewEnforceFormSecurity(),
		sessions:        usecases.sessions,
		gateway:         usecases.gateway,
		deps:            usecases.designerDependencies(),
		formRepository:  usecases.Repositories.FormRepository,
	}
}

func (usecases *UsecasesWithCreds) NewSyncUsecase() SyncUsecase {
	return SyncUsecase{
		enforceSecurity: usecases.NewEnforceFormSecurity(),
		gateway:         usecases.gateway,
		formRepository:  usecases.Repositories.FormRepository,
	}
}
