package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/form-designer/dto"
	"github.com/checkmarble/form-designer/models"
	"github.com/checkmarble/form-designer/utils"
)

// The authentication gateway in front of the service validates the user token and forwards these headers.
const (
	HeaderUserId   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Credentials stores the user forwarded by the gateway in the request context, along with a logger tagged with
// the user. Requests without user are rejected.
func Credentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := strings.TrimSpace(c.GetHeader(HeaderUserId))
		if userId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.APIErrorResponse{
				Message:   "missing " + HeaderUserId + " header",
				ErrorCode: dto.Unauthorized,
			})
			return
		}
		if err := models.ValidateIdentifier("user id", userId); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.APIErrorResponse{
				Message:   err.Error(),
				ErrorCode: dto.InvalidPayload,
			})
			return
		}

		creds := models.Credentials{
			UserId: models.UserId(userId),
			Role:   models.RoleFromString(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole)))),
		}

		ctx := utils.StoreCredentialsInContext(c.Request.Context(), creds)
		logger := utils.LoggerFromContext(ctx).With(
			slog.String("user_id", userId),
			slog.String("role", creds.Role.String()))
		ctx = utils.StoreLoggerInContext(ctx, logger)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PathIdentifiers rejects the requests whose form id path parameter could not be used as a storage key part.
func PathIdentifiers() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.ValidateIdentifier("form id", c.Param("form_id")); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.APIErrorResponse{
				Message:   err.Error(),
				ErrorCode: dto.InvalidPayload,
			})
			return
		}
		c.Next()
	}
}
