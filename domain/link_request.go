package domain

import "time"

type LinkRequestType string

const (
	LinkRequestParent LinkRequestType = "parent"
	LinkRequestSchool LinkRequestType = "school"
)

type LinkRequestStatus string

const (
	LinkPending  LinkRequestStatus = "pending"
	LinkApproved LinkRequestStatus = "approved"
	LinkRejected LinkRequestStatus = "rejected"
)

// LinkRequest is a pending invitation to link a student with a parent or school.
type LinkRequest struct {
	ID          string            `json:"id"`
	RequestType LinkRequestType   `json:"requestType"`
	Initiator   Role              `json:"initiator"`
	InitiatorID string            `json:"initiatorId"`
	TargetID    string            `json:"targetId"`
	TargetEmail string            `json:"targetEmail,omitempty"`
	Code        string            `json:"code"`
	Status      LinkRequestStatus `json:"status"`
	ExpiresAt   time.Time         `json:"expiresAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Expired reports whether the request can no longer be answered.
func (r *LinkRequest) Expired(now time.Time) bool {
	return r != nil && !r.ExpiresAt.After(now)
}

// LinkRequestView is a pending request enriched with the initiating parent.
type LinkRequestView struct {
	ID           string    `json:"id"`
	ParentName   string    `json:"parentName"`
	ParentEmail  string    `json:"parentEmail"`
	ParentAvatar string    `json:"parentAvatar,omitempty"`
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
