package domain

// PointsTransaction is a ledger entry sent to the points service.
type PointsTransaction struct {
	StudentID     string            `json:"studentId"`
	Amount        int               `json:"amount"`
	Type          string            `json:"type"`
	Source        string            `json:"source"`
	SourceID      string            `json:"sourceId"`
	Description   string            `json:"description"`
	AwardedBy     string            `json:"awardedBy,omitempty"`
	AwardedByRole string            `json:"awardedByRole,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	// IdempotencyKey deduplicates retried deliveries and is sent as a header.
	IdempotencyKey string `json:"-"`
}

const (
	PointsEarned   = "earned"
	PointsSpent    = "spent"
	PointsRefunded = "refunded"
)

// Notification is a best-effort message for the notification service.
type Notification struct {
	Type        string                 `json:"type"`
	RecipientID string                 `json:"recipientId"`
	Data        map[string]interface{} `json:"data"`
}

const (
	NotifyTaskAssigned      = "task_assigned"
	NotifyTaskUpdated       = "task_updated"
	NotifyTaskDeleted       = "task_deleted"
	NotifyTaskNeedsApproval = "task_needs_approval"
	NotifyTaskApproved      = "task_approved"
	NotifyTaskRejected      = "task_rejected"
	NotifyTaskComment       = "task_comment"
	NotifyRewardRedeemed    = "reward_redeemed"
	NotifyRedemptionUpdated = "redemption_updated"
	NotifyLinkRequest       = "link_request"
)
