// Package http provides HTTP handlers for the access request workflow:
// creating, approving, rejecting, cancelling and listing requests.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/http/dto"
	accessrequestUseCase "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/usecase"
	"github.com/yury-opolev/safeexchange-sub000/internal/httputil"
	identityHTTP "github.com/yury-opolev/safeexchange-sub000/internal/identity/http"
	customValidation "github.com/yury-opolev/safeexchange-sub000/internal/validation"
)

// AccessRequestHandler handles HTTP requests for the access request workflow.
type AccessRequestHandler struct {
	accessRequestUseCase accessrequestUseCase.AccessRequestUseCase
	logger               *slog.Logger
}

// NewAccessRequestHandler creates a new access request handler with required dependencies.
func NewAccessRequestHandler(
	accessRequestUseCase accessrequestUseCase.AccessRequestUseCase,
	logger *slog.Logger,
) *AccessRequestHandler {
	return &AccessRequestHandler{
		accessRequestUseCase: accessRequestUseCase,
		logger:               logger,
	}
}

// requestIDParam extracts and validates the request id URL parameter.
func requestIDParam(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid request id: %w", err), logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler records a request for permissions on a secret.
// POST /v1/access-requests
func (h *AccessRequestHandler) CreateHandler(c *gin.Context) {
	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	var req dto.CreateAccessRequestRequest
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

	created, err := h.accessRequestUseCase.Create(c.Request.Context(), *caller, req.SecretName, bits)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAccessRequestToResponse(created))
}

// ApproveHandler grants the requested permissions and resolves the request.
// POST /v1/access-requests/:id/approve - caller must currently hold grant_access.
func (h *AccessRequestHandler) ApproveHandler(c *gin.Context) {
	id, ok := requestIDParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	resolved, err := h.accessRequestUseCase.Approve(c.Request.Context(), *caller, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessRequestToResponse(resolved))
}

// RejectHandler resolves the request with no permission change.
// POST /v1/access-requests/:id/reject - caller must be a recipient.
func (h *AccessRequestHandler) RejectHandler(c *gin.Context) {
	id, ok := requestIDParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	resolved, err := h.accessRequestUseCase.Reject(c.Request.Context(), *caller, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessRequestToResponse(resolved))
}

// CancelHandler deletes an in-progress request.
// DELETE /v1/access-requests/:id - caller must be the requester.
func (h *AccessRequestHandler) CancelHandler(c *gin.Context) {
	id, ok := requestIDParam(c, h.logger)
	if !ok {
		return
	}

	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	if err := h.accessRequestUseCase.Cancel(c.Request.Context(), *caller, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists the caller's outgoing and incoming requests.
// GET /v1/access-requests
func (h *AccessRequestHandler) ListHandler(c *gin.Context) {
	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return
	}

	outgoing, incoming, err := h.accessRequestUseCase.List(c.Request.Context(), *caller)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessRequestsToListResponse(outgoing, incoming))
}
