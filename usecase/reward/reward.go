package reward

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/pkg/logger"
	"github.com/amankumar-in/univance/repository"
	"github.com/amankumar-in/univance/usecase"
)

type UseCase struct {
	categories  repository.RewardCategoryRepository
	rewards     repository.RewardRepository
	redemptions repository.RedemptionRepository
	balances    usecase.PointsBalance
	ledger      usecase.PointsLedger
	notifier    usecase.Notifier
	logger      *zap.Logger
}

func New(
	categories repository.RewardCategoryRepository,
	rewards repository.RewardRepository,
	redemptions repository.RedemptionRepository,
	balances usecase.PointsBalance,
	ledger usecase.PointsLedger,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		categories:  categories,
		rewards:     rewards,
		redemptions: redemptions,
		balances:    balances,
		ledger:      ledger,
		notifier:    notifier,
		logger:      logger,
	}
}

// canCreate lists the roles that publish rewards.
func canCreate(p *domain.Principal) bool {
	switch p.Role {
	case domain.RoleParent, domain.RoleTeacher, domain.RoleSchoolAdmin, domain.RolePlatformAdmin:
		return true
	case domain.RoleStudent, domain.RoleSocialWorker, domain.RoleSubAdmin:
		return false
	default:
		return false
	}
}

func ownsOrAdmin(p *domain.Principal, createdBy string) bool {
	return createdBy == p.UserID || p.Role == domain.RolePlatformAdmin
}

type CreateInput struct {
	Title                  string
	Description            string
	CategoryID             string
	PointsCost             int
	LimitedQuantity        bool
	Quantity               int
	SchoolID               string
	Image                  string
	RedemptionInstructions string
	Restrictions           string
	IsVisible              *bool
}

func (uc *UseCase) CreateReward(ctx context.Context, p *domain.Principal, in CreateInput) (*domain.Reward, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if !canCreate(p) {
		return nil, domain.Forbidden("Not authorized to create rewards")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Invalid("Missing required fields: title and pointsCost are required")
	}
	if in.PointsCost <= 0 {
		return nil, domain.Invalid("pointsCost must be positive")
	}
	if in.LimitedQuantity && in.Quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	if in.CategoryID != "" {
		if _, err := uc.categories.GetByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}

	reward, err := uc.rewards.Create(ctx, &domain.Reward{
		Title:                  strings.TrimSpace(in.Title),
		Description:            in.Description,
		CategoryID:             in.CategoryID,
		PointsCost:             in.PointsCost,
		LimitedQuantity:        in.LimitedQuantity,
		Quantity:               in.Quantity,
		CreatedBy:              p.UserID,
		CreatorRole:            p.Role,
		SchoolID:               in.SchoolID,
		Image:                  in.Image,
		RedemptionInstructions: in.RedemptionInstructions,
		Restrictions:           in.Restrictions,
		IsVisible:              visible,
		IsActive:               true,
	})
	if err != nil {
		return nil, err
	}
	uc.log(ctx).Info("reward created", zap.String("reward_id", reward.ID), zap.Int("points_cost", reward.PointsCost))
	return reward, nil
}

type ListInput struct {
	CategoryID   string
	CreatedBy    string
	SchoolID     string
	MinCost      int
	MaxCost      int
	Search       string
	WishlistOnly bool
	Page         domain.Page
}

type ListResult struct {
	Rewards    []domain.Reward
	Pagination domain.Pagination
}

// ListRewards returns the catalog. Students never see hidden rewards and get their wishlist flag.
func (uc *UseCase) ListRewards(ctx context.Context, p *domain.Principal, in ListInput) (*ListResult, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	filter := repository.RewardFilter{
		CategoryID: in.CategoryID,
		CreatedBy:  in.CreatedBy,
		SchoolID:   in.SchoolID,
		MinCost:    in.MinCost,
		MaxCost:    in.MaxCost,
		Search:     strings.TrimSpace(in.Search),
		Limit:      in.Page.Size,
		Offset:     in.Page.Offset(),
	}
	if p.Role == domain.RoleStudent {
		filter.WishlistOf = p.ProfileFor(domain.RoleStudent)
		filter.WishlistOnly = in.WishlistOnly
	} else {
		filter.IncludeHidden = true
	}

	rewards, total, err := uc.rewards.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Rewards: rewards, Pagination: in.Page.Paginate(total)}, nil
}

func (uc *UseCase) GetReward(ctx context.Context, p *domain.Principal, id string) (*domain.Reward, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	reward, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reward.IsVisible && p.Role == domain.RoleStudent {
		return nil, domain.ErrRewardNotFound
	}
	return reward, nil
}

func (uc *UseCase) UpdateReward(ctx context.Context, p *domain.Principal, id string, patch domain.RewardPatch) (*domain.Reward, error) {
	reward, err := uc.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, domain.Invalid("title must not be empty")
	}
	if patch.PointsCost != nil && *patch.PointsCost <= 0 {
		return nil, domain.Invalid("pointsCost must be positive")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	if patch.CategoryID != nil && *patch.CategoryID != "" {
		if _, err := uc.categories.GetByID(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	patch.Apply(reward)
	if err := uc.rewards.Update(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// DeleteReward soft deletes; existing redemptions keep pointing at the row.
func (uc *UseCase) DeleteReward(ctx context.Context, p *domain.Principal, id string) error {
	if _, err := uc.owned(ctx, p, id); err != nil {
		return err
	}
	return uc.rewards.SoftDelete(ctx, id)
}

func (uc *UseCase) ToggleVisibility(ctx context.Context, p *domain.Principal, id string) (*domain.Reward, error) {
	reward, err := uc.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	reward.IsVisible = !reward.IsVisible
	if err := uc.rewards.SetVisibility(ctx, id, reward.IsVisible); err != nil {
		return nil, err
	}
	return reward, nil
}

func (uc *UseCase) AddToWishlist(ctx context.Context, p *domain.Principal, rewardID string) error {
	studentID, err := studentOf(p)
	if err != nil {
		return err
	}
	if _, err := uc.GetReward(ctx, p, rewardID); err != nil {
		return err
	}
	return uc.rewards.AddToWishlist(ctx, studentID, rewardID)
}

func (uc *UseCase) RemoveFromWishlist(ctx context.Context, p *domain.Principal, rewardID string) error {
	studentID, err := studentOf(p)
	if err != nil {
		return err
	}
	return uc.rewards.RemoveFromWishlist(ctx, studentID, rewardID)
}

func studentOf(p *domain.Principal) (string, error) {
	if p == nil {
		return "", domain.ErrUnauthorized
	}
	if p.Role != domain.RoleStudent {
		return "", domain.Forbidden("Only students can do this")
	}
	return p.ProfileFor(domain.RoleStudent), nil
}

func (uc *UseCase) owned(ctx context.Context, p *domain.Principal, id string) (*domain.Reward, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	reward, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsOrAdmin(p, reward.CreatedBy) {
		return nil, domain.Forbidden("Not authorized to change this reward")
	}
	return reward, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*domain.Reward, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("Invalid reward ID format")
	}
	return uc.rewards.GetByID(ctx, id)
}

func (uc *UseCase) notify(ctx context.Context, n domain.Notification) {
	if uc.notifier == nil || n.RecipientID == "" {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		uc.log(ctx).Warn("notification failed", zap.String("type", n.Type), zap.Error(err))
	}
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, uc.logger)
}
