package middleware

import (
	"errors"
	"strings"

	"todosync/internal/adapter/http/helper"
	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	"todosync/internal/core/telemetry"
	"todosync/pkg/config"
	ct "todosync/pkg/context"
	. "todosync/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const UserIDKey = "x-user-id"

// AuthMiddleware resolves the bearer credential to a user id before any handler runs.
// Requests it rejects never reach the handlers.
func AuthMiddleware(verifier port.IdentityVerifier, metrics *telemetry.AppMetrics, logger *config.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, err := authenticate(c, verifier)
		if err != nil {
			reason := domain.AuthInvalidCredential.String()
			var authErr *domain.AuthError
			if errors.As(err, &authErr) {
				reason = authErr.Reason.String()
			}

			if metrics != nil {
				metrics.RecordAuthFailure(ctx, reason)
			}

			if logger != nil {
				logger.Warn(ctx, "Rejected credential",
					zap.String("reason", reason),
					zap.String("path", c.FullPath()),
					zap.String("request_id", ct.RequestID(ctx)))
			}

			helper.SendAuthError(c, err)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		GetCurrent(c).Set("user_id", userID)
		AddBusinessAttributes(trace.SpanFromContext(ctx), userID, c.FullPath())

		c.Next()
	}
}

func authenticate(c *gin.Context, verifier port.IdentityVerifier) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", domain.NewAuthError(domain.AuthMissingCredential, nil)
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", domain.NewAuthError(domain.AuthMalformedCredential, nil)
	}

	return verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
}

// UserID returns the authenticated caller set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
