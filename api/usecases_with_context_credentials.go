package api

import (
	"context"

	"github.com/checkmarble/form-designer/usecases"
	"github.com/checkmarble/form-designer/utils"
)

// usecasesWithCreds is only called behind the credentials middleware.
func usecasesWithCreds(ctx context.Context, uc usecases.Usecases) *usecases.UsecasesWithCreds {
	creds, found := utils.CredentialsFromCtx(ctx)
	if !found {
		panic("no credentials in context")
	}

	return &usecases.UsecasesWithCreds{
		Usecases:    uc,
		Credentials: creds,
		Logger:      utils.LoggerFromContext(ctx),
		Context:     ctx,
	}
}
