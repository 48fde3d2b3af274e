// Package dto provides data transfer objects for access request endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	customValidation "github.com/yury-opolev/safeexchange-sub000/internal/validation"
)

// CreateAccessRequestRequest contains the parameters for requesting
// permissions on a secret.
type CreateAccessRequestRequest struct {
	SecretName  string   `json:"secret_name"`
	Permissions []string `json:"permissions"`
}

// Validate checks if the create access request is valid.
func (r *CreateAccessRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SecretName, validation.Required, customValidation.SecretName),
		validation.Field(&r.Permissions,
			validation.Required,
			validation.Each(validation.In("read", "write", "grant_access", "revoke_access")),
		),
	)
}

// Mask parses the requested permission names into a mask.
func (r *CreateAccessRequestRequest) Mask() (permissionDomain.Mask, bool) {
	return permissionDomain.ParseMask(r.Permissions)
}

// RecipientResponse represents one subject a request was routed to.
type RecipientResponse struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
}

// AccessRequestResponse represents an access request in API responses.
type AccessRequestResponse struct {
	ID          string              `json:"id"`
	SecretName  string              `json:"secret_name"`
	SubjectType string              `json:"subject_type"`
	SubjectID   string              `json:"subject_id"`
	SubjectName string              `json:"subject_name,omitempty"`
	Permissions []string            `json:"permissions"`
	Status      string              `json:"status"`
	RequestedAt time.Time           `json:"requested_at"`
	FinishedBy  string              `json:"finished_by,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	Recipients  []RecipientResponse `json:"recipients"`
}

// ListAccessRequestsResponse represents the subject's outgoing requests and
// the in-progress requests routed to it.
type ListAccessRequestsResponse struct {
	Outgoing []AccessRequestResponse `json:"outgoing"`
	Incoming []AccessRequestResponse `json:"incoming"`
}

// MapAccessRequestToResponse converts a domain access request to a response DTO.
func MapAccessRequestToResponse(req *accessrequestDomain.AccessRequest) AccessRequestResponse {
	recipients := make([]RecipientResponse, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		recipients = append(recipients, RecipientResponse{
			SubjectType: string(recipient.SubjectType),
			SubjectID:   recipient.SubjectID,
			SubjectName: recipient.SubjectName,
		})
	}

	return AccessRequestResponse{
		ID:          req.ID.String(),
		SecretName:  req.SecretName,
		SubjectType: string(req.SubjectType),
		SubjectID:   req.SubjectID,
		SubjectName: req.SubjectName,
		Permissions: req.Permission.Facets(),
		Status:      string(req.Status),
		RequestedAt: req.RequestedAt,
		FinishedBy:  req.FinishedBy,
		FinishedAt:  req.FinishedAt,
		Recipients:  recipients,
	}
}

// MapAccessRequestsToListResponse converts outgoing and incoming domain
// requests to a list response.
func MapAccessRequestsToListResponse(outgoing, incoming []*accessrequestDomain.AccessRequest) ListAccessRequestsResponse {
	resp := ListAccessRequestsResponse{
		Outgoing: make([]AccessRequestResponse, 0, len(outgoing)),
		Incoming: make([]AccessRequestResponse, 0, len(incoming)),
	}
	for _, req := range outgoing {
		resp.Outgoing = append(resp.Outgoing, MapAccessRequestToResponse(req))
	}
	for _, req := range incoming {
		resp.Incoming = append(resp.Incoming, MapAccessRequestToResponse(req))
	}
	return resp
}
