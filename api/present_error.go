package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/pure_utils"
	"github.com/checkmarble/form-designer/utils"
)

// presentError writes the error response matching err and reports whether there was an error to present.
// Unexpected errors are reported to sentry and their message is not exposed.
func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	status, response := adaptErrorResponse(err)
	if status >= http.StatusInternalServerError {
		utils.LogAndReportSentryError(ctx, err)
	} else {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "request failed", "error", err.Error())
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, response)
	return true
}

// presentBindingError is used for payloads rejected by gin binding.
func presentBindingError(ctx context.Context, c *gin.Context, err error) {
	presentError(ctx, c, errors.Mark(err, models.BadParameterError))
}

func adaptErrorResponse(err error) (int, dto.APIErrorResponse) {
	var validationErrors validator.ValidationErrors
	var unmarshalTypeError *json.UnmarshalTypeError

	switch {
	case errors.As(err, &validationErrors):
		return http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid payload",
			ErrorCode: dto.InvalidPayload,
			Messages:  pure_utils.Map(validationErrors, adaptFieldValidationError),
		}
	case errors.As(err, &unmarshalTypeError):
		return http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid payload",
			ErrorCode: dto.InvalidPayload,
			Messages:  []string{adaptUnmarshalTypeError(unmarshalTypeError)},
		}
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "empty payload",
			ErrorCode: dto.InvalidPayload,
		}
	case errors.Is(err, models.BadParameterError):
		return http.StatusBadRequest, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.InvalidPayload}
	case errors.Is(err, models.UnAuthorizedError):
		return http.StatusUnauthorized, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.Unauthorized}
	case errors.Is(err, models.ForbiddenError):
		return http.StatusForbidden, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.Forbidden}
	case errors.Is(err, models.NotFoundError):
		return http.StatusNotFound, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.NotFound}
	case errors.Is(err, models.ConflictError):
		return http.StatusConflict, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.Conflict}
	case errors.Is(err, models.ErrRemoteRejected):
		return http.StatusBadGateway, dto.APIErrorResponse{Message: err.Error(), ErrorCode: dto.RemoteRejected}
	}
	return http.StatusInternalServerError, dto.APIErrorResponse{
		Message:   "internal server error",
		ErrorCode: dto.InternalError,
	}
}
