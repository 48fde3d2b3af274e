// Package http provides HTTP handlers for secret management: metadata CRUD,
// content items and the chunked transfer protocol.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/yury-opolev/safeexchange-sub000/internal/httputil"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	identityHTTP "github.com/yury-opolev/safeexchange-sub000/internal/identity/http"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/http/dto"
	secretUseCase "github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
	customValidation "github.com/yury-opolev/safeexchange-sub000/internal/validation"
)

// AccessTicketHeader carries the transfer ticket between upload calls.
const AccessTicketHeader = "X-Access-Ticket"

// SecretHandler handles HTTP requests for secret and content operations.
type SecretHandler struct {
	metadataUseCase secretUseCase.MetadataUseCase
	contentUseCase  secretUseCase.ContentUseCase
	maxChunkSize    int
	logger          *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
// A maxChunkSize of zero disables the request body cap.
func NewSecretHandler(
	metadataUseCase secretUseCase.MetadataUseCase,
	contentUseCase secretUseCase.ContentUseCase,
	maxChunkSize int,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		metadataUseCase: metadataUseCase,
		contentUseCase:  contentUseCase,
		maxChunkSize:    maxChunkSize,
		logger:          logger,
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

// contentNameParam extracts and validates the content name URL parameter.
func contentNameParam(c *gin.Context, logger *slog.Logger) (string, bool) {
	name := c.Param("content")
	if err := validation.Validate(name, validation.Required, validation.Length(1, 255)); err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid content name: %w", err), logger)
		return "", false
	}
	return name, true
}

func (h *SecretHandler) caller(c *gin.Context) (*identityDomain.Subject, bool) {
	caller, ok := identityHTTP.GetSubject(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("missing subject in context"), h.logger)
		return nil, false
	}
	return caller, true
}

// CreateHandler registers a new secret.
// POST /v1/secrets
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	obj, err := h.metadataUseCase.Create(c.Request.Context(), *caller, req.ToParams())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretToResponse(obj, nil))
}

// GetHandler returns a secret's metadata and content list.
// GET /v1/secrets/:name - caller must hold read.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	obj, contents, err := h.metadataUseCase.Get(c.Request.Context(), *caller, name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(obj, contents))
}

// UpdateHandler persists description and expiration settings.
// PATCH /v1/secrets/:name - caller must hold write.
func (h *SecretHandler) UpdateHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.UpdateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	obj, err := h.metadataUseCase.Update(c.Request.Context(), *caller, name, req.ToParams())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretToResponse(obj, nil))
}

// DeleteHandler purges a secret and everything it owns.
// DELETE /v1/secrets/:name - caller must hold write.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.metadataUseCase.Delete(c.Request.Context(), *caller, name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddContentHandler attaches a new blank content item to a secret.
// POST /v1/secrets/:name/contents - caller must hold write.
func (h *SecretHandler) AddContentHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.ContentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	content, err := h.contentUseCase.AddContent(c.Request.Context(), *caller, name, req.ContentType, req.FileName)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapContentToResponse(content))
}

// UpdateContentInfoHandler persists content type and file name.
// PATCH /v1/secrets/:name/contents/:content - caller must hold write.
func (h *SecretHandler) UpdateContentInfoHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.ContentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.contentUseCase.UpdateContentInfo(c.Request.Context(), *caller, name, contentName, req.ContentType, req.FileName)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DropContentHandler deletes every chunk of a content item and resets it to blank.
// POST /v1/secrets/:name/contents/:content/drop - caller must hold write.
func (h *SecretHandler) DropContentHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.contentUseCase.DropContent(c.Request.Context(), *caller, name, contentName); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteContentHandler removes a non-main content item and its chunks.
// DELETE /v1/secrets/:name/contents/:content - caller must hold write.
func (h *SecretHandler) DeleteContentHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.contentUseCase.DeleteContent(c.Request.Context(), *caller, name, contentName); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadChunkHandler stores one raw chunk payload under the ticket protocol.
// The ticket travels in the X-Access-Ticket header, empty on the first call
// of a transfer. The final=true query parameter marks the last chunk.
// POST /v1/secrets/:name/contents/:content/chunks - caller must hold write.
func (h *SecretHandler) UploadChunkHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	// Cap the body at the chunk limit before buffering; an oversized upload
	// is rejected without reading it whole.
	body := c.Request.Body
	if h.maxChunkSize > 0 {
		body = http.MaxBytesReader(c.Writer, body, int64(h.maxChunkSize))
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("chunk payload exceeds %d bytes", maxBytesErr.Limit), h.logger)
			return
		}
		httputil.HandleBadRequestGin(c, fmt.Errorf("failed to read chunk payload: %w", err), h.logger)
		return
	}

	chunkName, ticket, err := h.contentUseCase.UploadChunk(c.Request.Context(), *caller, secretUseCase.UploadChunkParams{
		SecretName:  name,
		ContentName: contentName,
		Ticket:      c.GetHeader(AccessTicketHeader),
		Final:       c.Query("final") == "true",
		Data:        data,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if ticket != "" {
		c.Header(AccessTicketHeader, ticket)
	}
	c.JSON(http.StatusOK, dto.UploadChunkResponse{
		ChunkName:    chunkName,
		AccessTicket: ticket,
	})
}

// DownloadChunkHandler returns one chunk's payload of a ready content item.
// GET /v1/secrets/:name/contents/:content/chunks/:chunk - caller must hold read.
func (h *SecretHandler) DownloadChunkHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	chunkName := c.Param("chunk")
	if err := validation.Validate(chunkName, validation.Required, validation.Length(1, 255)); err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid chunk name: %w", err), h.logger)
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	data, err := h.contentUseCase.DownloadChunk(c.Request.Context(), *caller, name, contentName, chunkName)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DownloadContentHandler streams the whole content, chunks concatenated in order.
// GET /v1/secrets/:name/contents/:content - caller must hold read.
func (h *SecretHandler) DownloadContentHandler(c *gin.Context) {
	name, ok := secretNameParam(c, h.logger)
	if !ok {
		return
	}
	contentName, ok := contentNameParam(c, h.logger)
	if !ok {
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	content, reader, err := h.contentUseCase.DownloadContent(c.Request.Context(), *caller, name, contentName)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer reader.Close()

	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extraHeaders := map[string]string{}
	if content.FileName != "" {
		extraHeaders["Content-Disposition"] = fmt.Sprintf("attachment; filename=%q", content.FileName)
	}

	c.DataFromReader(http.StatusOK, content.TotalSize, contentType, reader, extraHeaders)
}
