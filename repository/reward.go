package repository

import (
	"context"

	"github.com/amankumar-in/univance/domain"
)

type RewardFilter struct {
	CategoryID    string
	CreatedBy     string
	SchoolID      string
	MinCost       int
	MaxCost       int
	Search        string
	IncludeHidden bool
	WishlistOf    string
	WishlistOnly  bool
	Limit         int
	Offset        int
}

type RewardCategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RewardCategory, error)
	List(ctx context.Context, includeInactive bool) ([]domain.RewardCategory, error)
	Create(ctx context.Context, category *domain.RewardCategory) (*domain.RewardCategory, error)
	Update(ctx context.Context, category *domain.RewardCategory) error
	Deactivate(ctx context.Context, id string) error
}

type RewardRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reward, error)
	List(ctx context.Context, filter RewardFilter) ([]domain.Reward, int, error)
	Create(ctx context.Context, reward *domain.Reward) (*domain.Reward, error)
	Update(ctx context.Context, reward *domain.Reward) error
	SoftDelete(ctx context.Context, id string) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	AddToWishlist(ctx context.Context, studentID, rewardID string) error
	RemoveFromWishlist(ctx context.Context, studentID, rewardID string) error
}

type RedemptionFilter struct {
	StudentID   string
	RewardOwner string
	Status      string
	Limit       int
	Offset      int
}

type RedemptionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Redemption, error)
	List(ctx context.Context, filter RedemptionFilter) ([]domain.Redemption, int, error)
	// Reserve takes one unit of stock and records a pending redemption atomically.
	Reserve(ctx context.Context, redemption *domain.Redemption) (*domain.Redemption, error)
	// Resolve moves a pending redemption to its final status, restocking when asked.
	Resolve(ctx context.Context, redemption *domain.Redemption, restock bool) error
}
