package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	identityHTTP "github.com/yury-opolev/safeexchange-sub000/internal/identity/http"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/http/dto"
	secretUseCase "github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase/mocks"
)

const testMaxChunkSize = 1024

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*SecretHandler, *mocks.MockMetadataUseCase, *mocks.MockContentUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockMetadata := new(mocks.MockMetadataUseCase)
	mockContent := new(mocks.MockContentUseCase)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewSecretHandler(mockMetadata, mockContent, testMaxChunkSize, logger)

	return handler, mockMetadata, mockContent
}

// createTestContext creates a test Gin context with the given request,
// authenticated as the provided subject.
func createTestContext(
	method, path string,
	body interface{},
	subject *identityDomain.Subject,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch payload := body.(type) {
	case nil:
	case []byte:
		bodyReader = bytes.NewReader(payload)
	default:
		bodyBytes, _ := json.Marshal(payload)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if subject != nil {
		req = req.WithContext(identityHTTP.WithSubject(req.Context(), subject))
	}
	c.Request = req

	return c, w
}

func testCaller() *identityDomain.Subject {
	return &identityDomain.Subject{
		Type:        identityDomain.SubjectTypeUser,
		ID:          "alice",
		DisplayName: "Alice",
	}
}

func testObject() *secretDomain.ObjectMetadata {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &secretDomain.ObjectMetadata{
		ObjectName:      "s1",
		Description:     "deploy key",
		CreatedBy:       *testCaller(),
		CreatedAt:       now,
		UpdatedBy:       *testCaller(),
		UpdatedAt:       now,
		LastAccessedAt:  now,
		KeepInStorage:   true,
		MainContentName: "content-main",
	}
}

func TestSecretHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		mockMetadata.On("Create", mock.Anything, *testCaller(), mock.MatchedBy(func(params secretUseCase.CreateSecretParams) bool {
			return params.Name == "s1" && params.KeepInStorage
		})).Return(testObject(), nil)

		c, w := createTestContext(http.MethodPost, "/v1/secrets", dto.CreateSecretRequest{
			Name:          "s1",
			Description:   "deploy key",
			KeepInStorage: true,
		}, testCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.SecretResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "s1", resp.Name)
		assert.Equal(t, "content-main", resp.MainContentName)
		mockMetadata.AssertExpectations(t)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/secrets", dto.CreateSecretRequest{
			Name: "no spaces allowed",
		}, testCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockMetadata.AssertNotCalled(t, "Create")
	})

	t.Run("Error_ScheduledExpirationWithoutDeadline", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/secrets", dto.CreateSecretRequest{
			Name:       "s1",
			Expiration: dto.ExpirationSettings{ScheduleExpiration: true},
		}, testCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockMetadata.AssertNotCalled(t, "Create")
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		mockMetadata.On("Create", mock.Anything, *testCaller(), mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrConflict, "secret already exists"))

		c, w := createTestContext(http.MethodPost, "/v1/secrets", dto.CreateSecretRequest{
			Name: "s1", KeepInStorage: true,
		}, testCaller())

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_MissingSubject", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/secrets", dto.CreateSecretRequest{Name: "s1"}, nil)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockMetadata.AssertNotCalled(t, "Create")
	})
}

func TestSecretHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		contents := []*secretDomain.ContentMetadata{
			{ContentName: "content-main", IsMain: true, Status: secretDomain.ContentStatusReady, ChunkCount: 2, TotalSize: 6},
		}
		mockMetadata.On("Get", mock.Anything, *testCaller(), "s1").Return(testObject(), contents, nil)

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.SecretResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Contents, 1)
		assert.Equal(t, "ready", resp.Contents[0].Status)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		mockMetadata.On("Get", mock.Anything, *testCaller(), "s1").
			Return(nil, nil, apperrors.Wrap(apperrors.ErrNotFound, "secret not found"))

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSecretHandler_UpdateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		updated := testObject()
		updated.Description = "rotated"
		mockMetadata.On("Update", mock.Anything, *testCaller(), "s1",
			mock.MatchedBy(func(params secretUseCase.UpdateSecretParams) bool {
				return params.Description == "rotated"
			})).Return(updated, nil)

		c, w := createTestContext(http.MethodPatch, "/v1/secrets/s1", dto.UpdateSecretRequest{
			Description: "rotated",
		}, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.SecretResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "rotated", resp.Description)
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		mockMetadata.On("Update", mock.Anything, *testCaller(), "s1", mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrForbidden, "write access denied"))

		c, w := createTestContext(http.MethodPatch, "/v1/secrets/s1", dto.UpdateSecretRequest{}, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSecretHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		mockMetadata.On("Delete", mock.Anything, *testCaller(), "s1").Return(nil)

		c, w := createTestContext(http.MethodDelete, "/v1/secrets/s1", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.DeleteHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockMetadata.AssertExpectations(t)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		handler, mockMetadata, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodDelete, "/v1/secrets/bad%20name", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "bad name"}}

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockMetadata.AssertNotCalled(t, "Delete")
	})
}

func TestSecretHandler_AddContentHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("AddContent", mock.Anything, *testCaller(), "s1", "application/pdf", "report.pdf").
			Return(&secretDomain.ContentMetadata{
				ContentName: "content-b",
				SecretName:  "s1",
				ContentType: "application/pdf",
				FileName:    "report.pdf",
				Status:      secretDomain.ContentStatusBlank,
			}, nil)

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents", dto.ContentInfoRequest{
			ContentType: "application/pdf",
			FileName:    "report.pdf",
		}, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}}

		handler.AddContentHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.ContentResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "content-b", resp.ContentName)
	})
}

func TestSecretHandler_UploadChunkHandler(t *testing.T) {
	t.Run("Success_FirstChunkReturnsTicket", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("UploadChunk", mock.Anything, *testCaller(), secretUseCase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Data:        []byte("abc"),
		}).Return("content-a-00000000", "ticket-1", nil)

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/chunks", []byte("abc"), testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.UploadChunkHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ticket-1", w.Header().Get(AccessTicketHeader))
		var resp dto.UploadChunkResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "content-a-00000000", resp.ChunkName)
		assert.Equal(t, "ticket-1", resp.AccessTicket)
	})

	t.Run("Success_FinalChunkClearsTicket", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("UploadChunk", mock.Anything, *testCaller(), secretUseCase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-1",
			Final:       true,
			Data:        []byte("def"),
		}).Return("content-a-00000001", "", nil)

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/chunks?final=true", []byte("def"), testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}
		c.Request.Header.Set(AccessTicketHeader, "ticket-1")

		handler.UploadChunkHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(AccessTicketHeader))
		var resp dto.UploadChunkResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.AccessTicket)
	})

	t.Run("Error_ConcurrentTransfer", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("UploadChunk", mock.Anything, *testCaller(), mock.Anything).
			Return("", "", apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation"))

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/chunks", []byte("abc"), testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.UploadChunkHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_EmptyPayload", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("UploadChunk", mock.Anything, *testCaller(), mock.Anything).
			Return("", "", apperrors.Wrap(apperrors.ErrInvalidInput, "empty chunk payload"))

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/chunks", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.UploadChunkHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_PayloadOverChunkLimit", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		oversized := bytes.Repeat([]byte("x"), testMaxChunkSize+1)
		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/chunks", oversized, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.UploadChunkHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockContent.AssertNotCalled(t, "UploadChunk")
	})
}

func TestSecretHandler_DownloadChunkHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("DownloadChunk", mock.Anything, *testCaller(), "s1", "content-a", "content-a-00000000").
			Return([]byte("abc"), nil)

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1/contents/content-a/chunks/content-a-00000000", nil, testCaller())
		c.Params = gin.Params{
			{Key: "name", Value: "s1"},
			{Key: "content", Value: "content-a"},
			{Key: "chunk", Value: "content-a-00000000"},
		}

		handler.DownloadChunkHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc", w.Body.String())
	})

	t.Run("Error_NotReady", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("DownloadChunk", mock.Anything, *testCaller(), "s1", "content-a", "content-a-00000000").
			Return(nil, apperrors.Wrap(apperrors.ErrUnprocessable, "content is not ready"))

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1/contents/content-a/chunks/content-a-00000000", nil, testCaller())
		c.Params = gin.Params{
			{Key: "name", Value: "s1"},
			{Key: "content", Value: "content-a"},
			{Key: "chunk", Value: "content-a-00000000"},
		}

		handler.DownloadChunkHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestSecretHandler_DownloadContentHandler(t *testing.T) {
	t.Run("Success_StreamsChunksInOrder", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		content := &secretDomain.ContentMetadata{
			ContentName: "content-a",
			SecretName:  "s1",
			ContentType: "text/plain",
			FileName:    "notes.txt",
			Status:      secretDomain.ContentStatusReady,
			ChunkCount:  2,
			TotalSize:   6,
		}
		mockContent.On("DownloadContent", mock.Anything, *testCaller(), "s1", "content-a").
			Return(content, io.NopCloser(bytes.NewReader([]byte("abcdef"))), nil)

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1/contents/content-a", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.DownloadContentHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abcdef", w.Body.String())
		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="notes.txt"`, w.Header().Get("Content-Disposition"))
	})

	t.Run("Error_Locked", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("DownloadContent", mock.Anything, *testCaller(), "s1", "content-a").
			Return(nil, nil, apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation"))

		c, w := createTestContext(http.MethodGet, "/v1/secrets/s1/contents/content-a", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.DownloadContentHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSecretHandler_DropAndDeleteContent(t *testing.T) {
	t.Run("Drop_Success", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("DropContent", mock.Anything, *testCaller(), "s1", "content-a").Return(nil)

		c, w := createTestContext(http.MethodPost, "/v1/secrets/s1/contents/content-a/drop", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.DropContentHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Delete_MainContentRefused", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("DeleteContent", mock.Anything, *testCaller(), "s1", "content-main").
			Return(apperrors.Wrap(apperrors.ErrUnprocessable, "main content cannot be deleted"))

		c, w := createTestContext(http.MethodDelete, "/v1/secrets/s1/contents/content-main", nil, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-main"}}

		handler.DeleteContentHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("UpdateInfo_Success", func(t *testing.T) {
		handler, _, mockContent := setupTestHandler(t)

		mockContent.On("UpdateContentInfo", mock.Anything, *testCaller(), "s1", "content-a", "text/plain", "notes.txt").
			Return(nil)

		c, w := createTestContext(http.MethodPatch, "/v1/secrets/s1/contents/content-a", dto.ContentInfoRequest{
			ContentType: "text/plain",
			FileName:    "notes.txt",
		}, testCaller())
		c.Params = gin.Params{{Key: "name", Value: "s1"}, {Key: "content", Value: "content-a"}}

		handler.UpdateContentInfoHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
