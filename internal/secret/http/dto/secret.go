// Package dto provides data transfer objects for secret and content endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
	secretUseCase "github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
	customValidation "github.com/yury-opolev/safeexchange-sub000/internal/validation"
)

// ExpirationSettings carries a secret's expiration configuration on the wire.
type ExpirationSettings struct {
	ScheduleExpiration      bool       `json:"schedule_expiration"`
	ExpireAt                *time.Time `json:"expire_at,omitempty"`
	ExpireOnIdleTime        bool       `json:"expire_on_idle_time"`
	IdleTimeToExpireSeconds int64      `json:"idle_time_to_expire_seconds,omitempty"`
}

// Validate checks if the expiration settings are consistent.
func (s ExpirationSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ExpireAt, validation.Required.When(s.ScheduleExpiration)),
		validation.Field(&s.IdleTimeToExpireSeconds,
			validation.Required.When(s.ExpireOnIdleTime),
			validation.Min(int64(0)),
		),
	)
}

// ToExpiration converts the settings to domain expiration metadata.
func (s ExpirationSettings) ToExpiration() secretDomain.ExpirationMetadata {
	expiration := secretDomain.ExpirationMetadata{
		ScheduleExpiration: s.ScheduleExpiration,
		ExpireOnIdleTime:   s.ExpireOnIdleTime,
		IdleTimeToExpire:   time.Duration(s.IdleTimeToExpireSeconds) * time.Second,
	}
	if s.ExpireAt != nil {
		expiration.ExpireAt = *s.ExpireAt
	}
	return expiration
}

func mapExpirationToSettings(expiration secretDomain.ExpirationMetadata) ExpirationSettings {
	settings := ExpirationSettings{
		ScheduleExpiration:      expiration.ScheduleExpiration,
		ExpireOnIdleTime:        expiration.ExpireOnIdleTime,
		IdleTimeToExpireSeconds: int64(expiration.IdleTimeToExpire / time.Second),
	}
	if !expiration.ExpireAt.IsZero() {
		expireAt := expiration.ExpireAt
		settings.ExpireAt = &expireAt
	}
	return settings
}

// CreateSecretRequest contains the parameters for creating a secret.
// Value carries a legacy single-value payload, stored only when
// keep_in_storage is false.
type CreateSecretRequest struct {
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Expiration    ExpirationSettings `json:"expiration"`
	KeepInStorage bool               `json:"keep_in_storage"`
	Value         []byte             `json:"value,omitempty"`
}

// Validate checks if the create secret request is valid.
func (r *CreateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.SecretName),
		validation.Field(&r.Description, validation.Length(0, 1024)),
		validation.Field(&r.Expiration),
	)
}

// ToParams converts the request to usecase parameters.
func (r *CreateSecretRequest) ToParams() secretUseCase.CreateSecretParams {
	return secretUseCase.CreateSecretParams{
		Name:          r.Name,
		Description:   r.Description,
		Expiration:    r.Expiration.ToExpiration(),
		KeepInStorage: r.KeepInStorage,
		Value:         r.Value,
	}
}

// UpdateSecretRequest contains the parameters for updating a secret's metadata.
type UpdateSecretRequest struct {
	Description string             `json:"description,omitempty"`
	Expiration  ExpirationSettings `json:"expiration"`
}

// Validate checks if the update secret request is valid.
func (r *UpdateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Description, validation.Length(0, 1024)),
		validation.Field(&r.Expiration),
	)
}

// ToParams converts the request to usecase parameters.
func (r *UpdateSecretRequest) ToParams() secretUseCase.UpdateSecretParams {
	return secretUseCase.UpdateSecretParams{
		Description: r.Description,
		Expiration:  r.Expiration.ToExpiration(),
	}
}

// ContentInfoRequest contains the descriptive fields of a content item.
type ContentInfoRequest struct {
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
}

// Validate checks if the content info request is valid.
func (r *ContentInfoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ContentType, validation.Length(0, 255)),
		validation.Field(&r.FileName, validation.Length(0, 255)),
	)
}

// ContentResponse represents one content item of a secret.
type ContentResponse struct {
	ContentName string `json:"content_name"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	IsMain      bool   `json:"is_main"`
	Status      string `json:"status"`
	ChunkCount  int    `json:"chunk_count"`
	TotalSize   int64  `json:"total_size"`
}

// SecretResponse represents a secret's metadata and its content items.
type SecretResponse struct {
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	CreatedBy       string             `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedBy       string             `json:"updated_by,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
	LastAccessedAt  time.Time          `json:"last_accessed_at"`
	Expiration      ExpirationSettings `json:"expiration"`
	KeepInStorage   bool               `json:"keep_in_storage"`
	MainContentName string             `json:"main_content_name"`
	Contents        []ContentResponse  `json:"contents"`
}

// UploadChunkResponse carries the stored chunk name and the ticket to present
// on the next upload call. The ticket is empty once the transfer is final.
type UploadChunkResponse struct {
	ChunkName    string `json:"chunk_name"`
	AccessTicket string `json:"access_ticket,omitempty"`
}

// MapContentToResponse converts domain content metadata to a response.
func MapContentToResponse(content *secretDomain.ContentMetadata) ContentResponse {
	return ContentResponse{
		ContentName: content.ContentName,
		ContentType: content.ContentType,
		FileName:    content.FileName,
		IsMain:      content.IsMain,
		Status:      string(content.Status),
		ChunkCount:  content.ChunkCount,
		TotalSize:   content.TotalSize,
	}
}

// MapSecretToResponse converts domain metadata and contents to a response.
func MapSecretToResponse(obj *secretDomain.ObjectMetadata, contents []*secretDomain.ContentMetadata) SecretResponse {
	mapped := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		mapped = append(mapped, MapContentToResponse(content))
	}

	return SecretResponse{
		Name:            obj.ObjectName,
		Description:     obj.Description,
		CreatedBy:       obj.CreatedBy.DisplayName,
		CreatedAt:       obj.CreatedAt,
		UpdatedBy:       obj.UpdatedBy.DisplayName,
		UpdatedAt:       obj.UpdatedAt,
		LastAccessedAt:  obj.LastAccessedAt,
		Expiration:      mapExpirationToSettings(obj.Expiration),
		KeepInStorage:   obj.KeepInStorage,
		MainContentName: obj.MainContentName,
		Contents:        mapped,
	}
}
