// Package http provides HTTP handlers for access management on secrets:
// granting, revoking and listing subject permissions.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/yury-opolev/safeexchange-sub000/internal/httputil"
	identityHTTP "github.com/yury-opolev/safeexchange-sub000/internal/identity/http"
	"github.com/yury-opolev/safeexchange-sub000/internal/permission/http/dto"
	permissionUseCase "github.com/yury-opolev/safeexchange-sub000/internal/permission/usecase"
	customValidation "github.com/yury-opolev/safeexchange-sub000/internal/validation"
)

// AccessHandler handles HTTP requests for access management operations.
type AccessHandler struct {
	authorizationUseCase permissionUseCase.AuthorizationUseCase
	logger               *slog.Logger
}

// NewAccessHandler creates a new access handler with required dependencies.
func NewAccessHandler(
	authorizationUseCase permissionUseCase.AuthorizationUseCase,
	logger *slog.Logger,
) *AccessHandler {
	return &AccessHandler{
		authorizationUseCase: authorizationUseCase,
		logger:               logger,
	}
}

// secretNameParam extracts and validates the secret name URL parameter.
func secretNameParam(c *gin.Context, logger *slog.Logger) (string, bool) {
	name := c.Param("name")
	if err := validation.Validate(name, validation.Required, customValidation.SecretName); err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid secret name: %w", err), logger)
		return "", false
	}
	return name, true
}

// GrantHandler grants permission bits on a secret to a subject.
// POST /v1/secrets/:name/access - caller must hold grant_access.
func (h *AccessHandler) GrantHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	var req dto.MutateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	bits, ok := req.Mask()
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("unknown permission name"), h.logger)
		return
	}

	err := h.authorizationUseCase.Grant(c.Request.Context(), *caller, name, req.Subject.ToSubject(), bits)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeHandler revokes permission bits on a secret from a subject.
// DELETE /v1/secrets/:name/access - caller must hold revoke_access.
func (h *AccessHandler) RevokeHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	var req dto.MutateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	bits, ok := req.Mask()
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("unknown permission name"), h.logger)
		return
	}

	err := h.authorizationUseCase.Revoke(c.Request.Context(), *caller, name, req.Subject.ToSubject(), bits)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists every permission row on a secret.
// GET /v1/secrets/:name/access - caller must hold read.
func (h *AccessHandler) ListHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	perms, err := h.authorizationUseCase.ListAccess(c.Request.Context(), *caller, name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToListResponse(perms))
}
