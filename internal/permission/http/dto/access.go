// Package dto provides data transfer objects for access management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// SubjectRef identifies the subject an access mutation targets.
type SubjectRef struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
}

// Validate checks if the subject reference is valid.
func (r SubjectRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubjectType,
			validation.Required,
			validation.In(
				string(identityDomain.SubjectTypeUser),
				string(identityDomain.SubjectTypeApplication),
				string(identityDomain.SubjectTypeGroup),
			),
		),
		validation.Field(&r.SubjectID, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.SubjectName, validation.Length(0, 255)),
	)
}

// ToSubject converts the reference to a domain subject.
func (r SubjectRef) ToSubject() identityDomain.Subject {
	return identityDomain.Subject{
		Type:        identityDomain.SubjectType(r.SubjectType),
		ID:          r.SubjectID,
		DisplayName: r.SubjectName,
	}
}

// MutateAccessRequest contains the parameters for granting or revoking
// permissions on a secret. The secret name is extracted from the URL.
type MutateAccessRequest struct {
	Subject     SubjectRef `json:"subject"`
	Permissions []string   `json:"permissions"`
}

// Validate checks if the access mutation request is valid.
func (r *MutateAccessRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Permissions,
			validation.Required,
			validation.Each(validation.In("read", "write", "grant_access", "revoke_access")),
		),
	)
}

// Mask parses the requested permission names into a mask.
func (r *MutateAccessRequest) Mask() (permissionDomain.Mask, bool) {
	return permissionDomain.ParseMask(r.Permissions)
}

// AccessEntryResponse represents one subject's permissions on a secret.
type AccessEntryResponse struct {
	SubjectType string   `json:"subject_type"`
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name,omitempty"`
	Permissions []string `json:"permissions"`
}

// ListAccessResponse represents every permission row on a secret.
type ListAccessResponse struct {
	Data []AccessEntryResponse `json:"data"`
}

// MapPermissionsToListResponse converts domain permission rows to a list response.
func MapPermissionsToListResponse(perms []*permissionDomain.SubjectPermissions) ListAccessResponse {
	data := make([]AccessEntryResponse, 0, len(perms))
	for _, perm := range perms {
		data = append(data, AccessEntryResponse{
			SubjectType: string(perm.SubjectType),
			SubjectID:   perm.SubjectID,
			SubjectName: perm.SubjectName,
			Permissions: perm.Mask.Facets(),
		})
	}

	return ListAccessResponse{
		Data: data,
	}
}
