package domain

import "time"

type RewardCategory struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type"`
	Icon         string    `json:"icon,omitempty"`
	Color        string    `json:"color,omitempty"`
	Visibility   string    `json:"visibility"`
	ParentID     string    `json:"parentCategory,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatorRole  Role      `json:"creatorRole"`
	IsSystem     bool      `json:"isSystem"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Reward is a catalog item students redeem points for.
type Reward struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description,omitempty"`
	CategoryID             string    `json:"categoryId,omitempty"`
	PointsCost             int       `json:"pointsCost"`
	LimitedQuantity        bool      `json:"limitedQuantity"`
	Quantity               int       `json:"quantity"`
	CreatedBy              string    `json:"createdBy"`
	CreatorRole            Role      `json:"creatorRole"`
	SchoolID               string    `json:"schoolId,omitempty"`
	Image                  string    `json:"image,omitempty"`
	RedemptionInstructions string    `json:"redemptionInstructions,omitempty"`
	Restrictions           string    `json:"restrictions,omitempty"`
	IsVisible              bool      `json:"isVisible"`
	IsActive               bool      `json:"isActive"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`

	InWishlist bool `json:"inWishlist,omitempty"`
}

// InStock reports whether one more unit can be redeemed.
func (r *Reward) InStock() bool {
	return r != nil && (!r.LimitedQuantity || r.Quantity > 0)
}

// RewardPatch lists mutable reward fields.
type RewardPatch struct {
	Title                  *string
	Description            *string
	CategoryID             *string
	PointsCost             *int
	LimitedQuantity        *bool
	Quantity               *int
	Image                  *string
	RedemptionInstructions *string
	Restrictions           *string
}

func (p RewardPatch) Apply(r *Reward) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.CategoryID != nil {
		r.CategoryID = *p.CategoryID
	}
	if p.PointsCost != nil {
		r.PointsCost = *p.PointsCost
	}
	if p.LimitedQuantity != nil {
		r.LimitedQuantity = *p.LimitedQuantity
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.Image != nil {
		r.Image = *p.Image
	}
	if p.RedemptionInstructions != nil {
		r.RedemptionInstructions = *p.RedemptionInstructions
	}
	if p.Restrictions != nil {
		r.Restrictions = *p.Restrictions
	}
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionRejected  RedemptionStatus = "rejected"
	RedemptionCancelled RedemptionStatus = "cancelled"
)

// Redemption records a student's claim against a reward.
type Redemption struct {
	ID           string           `json:"id"`
	RewardID     string           `json:"rewardId"`
	RewardTitle  string           `json:"rewardTitle,omitempty"`
	StudentID    string           `json:"studentId"`
	PointsSpent  int              `json:"pointsSpent"`
	Status       RedemptionStatus `json:"status"`
	ReviewedBy   string           `json:"reviewedBy,omitempty"`
	ReviewerRole Role             `json:"reviewerRole,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
