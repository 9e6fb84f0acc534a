package api

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/models"
)

func TestAdaptErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"bad parameter", errors.Wrap(models.BadParameterError, "columns"), http.StatusBadRequest, dto.InvalidPayload},
		{"form id", models.ErrFormIdRequired, http.StatusBadRequest, dto.InvalidPayload},
		{"forbidden", errors.Wrap(models.ForbiddenError, "edit"), http.StatusForbidden, dto.Forbidden},
		{"unknown gesture", models.ErrUnknownGesture, http.StatusNotFound, dto.NotFound},
		{"conflict", models.ConflictError, http.StatusConflict, dto.Conflict},
		{"rejected", errors.Wrap(models.ErrRemoteRejected, "save"), http.StatusBadGateway, dto.RemoteRejected},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, dto.InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := adaptErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, response.ErrorCode)
		})
	}
}

func TestAdaptErrorResponse_hides_internal_messages(t *testing.T) {
	_, response := adaptErrorResponse(errors.New("connection string with password"))

	assert.Equal(t, "internal server error", response.Message)
}
