package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	"github.com/yury-opolev/safeexchange-sub000/internal/httputil"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	identityUseCase "github.com/yury-opolev/safeexchange-sub000/internal/identity/usecase"
)

// Trusted headers set by the authenticating gateway for user principals.
// Application principals authenticate with a Bearer token instead.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
)

// SubjectMiddleware resolves the caller to a Subject and stores it in the
// request context.
//
// Resolution order:
//  1. "Authorization: Bearer <id>.<secret>" → application subject, verified
//     against the application registry.
//  2. Trusted X-User-Id (and optional X-User-Name) headers set by the
//     identity-resolving gateway → user subject.
//
// Requests carrying neither are rejected with 401.
func SubjectMiddleware(
	resolver identityUseCase.ResolverUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			const bearerPrefix = "bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				logger.Debug("authentication failed: malformed authorization header")
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
				c.Abort()
				return
			}

			token := authHeader[len(bearerPrefix):]
			subject, err := resolver.ResolveApplication(c.Request.Context(), token)
			if err != nil {
				logger.Debug("authentication failed", slog.String("error", err.Error()))
				httputil.HandleErrorGin(c, err, logger)
				c.Abort()
				return
			}

			c.Request = c.Request.WithContext(WithSubject(c.Request.Context(), subject))
			c.Next()
			return
		}

		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			logger.Debug("authentication failed: no credentials presented")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		displayName := c.GetHeader(HeaderUserName)
		if displayName == "" {
			displayName = userID
		}

		subject := &identityDomain.Subject{
			Type:        identityDomain.SubjectTypeUser,
			ID:          userID,
			DisplayName: displayName,
		}

		c.Request = c.Request.WithContext(WithSubject(c.Request.Context(), subject))
		c.Next()
	}
}
