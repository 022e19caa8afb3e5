package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	rewardUC "github.com/amankumar-in/univance/usecase/reward"
)

type RewardHandler struct {
	baseHandler
	uc *rewardUC.UseCase
}

func NewRewardHandler(uc *rewardUC.UseCase, opts Options) *RewardHandler {
	return &RewardHandler{
		baseHandler: newBaseHandler(opts),
		uc:          uc,
	}
}

// @Summary List rewards
// @Tags rewards
// @Router /api/rewards [get]
func (h *RewardHandler) List(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.ListRewards(stdCtx, p, rewardUC.ListInput{
		CategoryID:   query(ctx, "categoryId"),
		CreatedBy:    query(ctx, "createdBy"),
		SchoolID:     query(ctx, "schoolId"),
		MinCost:      parseInt(query(ctx, "minCost"), 0),
		MaxCost:      parseInt(query(ctx, "maxCost"), 0),
		Search:       query(ctx, "search"),
		WishlistOnly: queryBool(ctx, "wishlistOnly"),
		Page:         pageFrom(ctx),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, result.Rewards, result.Pagination)
}

// @Router /api/rewards [post]
func (h *RewardHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.RewardRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Reward created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateReward(c, p, rewardUC.CreateInput{
			Title:                  req.Title,
			Description:            req.Description,
			CategoryID:             req.CategoryID,
			PointsCost:             req.PointsCost,
			LimitedQuantity:        req.LimitedQuantity,
			Quantity:               req.Quantity,
			SchoolID:               req.SchoolID,
			Image:                  req.Image,
			RedemptionInstructions: req.RedemptionInstructions,
			Restrictions:           req.Restrictions,
			IsVisible:              req.IsVisible,
		})
	})
}

// @Router /api/rewards/{id} [get]
func (h *RewardHandler) Get(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.GetReward(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/{id} [put]
func (h *RewardHandler) Update(ctx *fasthttp.RequestCtx) {
	var req transport.RewardUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Reward updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdateReward(c, p, pathParam(ctx, "id"), req.Patch())
	})
}

// @Router /api/rewards/{id} [delete]
func (h *RewardHandler) Delete(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Reward deleted successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.DeleteReward(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/{id}/visibility [put]
func (h *RewardHandler) ToggleVisibility(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Reward visibility updated", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.ToggleVisibility(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/{id}/wishlist [post]
func (h *RewardHandler) AddToWishlist(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Reward added to wishlist", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.AddToWishlist(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/{id}/wishlist [delete]
func (h *RewardHandler) RemoveFromWishlist(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Reward removed from wishlist", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.RemoveFromWishlist(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/{id}/redeem [post]
func (h *RewardHandler) Redeem(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusCreated, "Reward redeemed successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.Redeem(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/categories [get]
func (h *RewardHandler) ListCategories(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.ListCategories(c, p, queryBool(ctx, "includeInactive"))
	})
}

// @Router /api/rewards/categories [post]
func (h *RewardHandler) CreateCategory(ctx *fasthttp.RequestCtx) {
	var req transport.RewardCategoryRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Category created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateCategory(c, p, categoryInput(req))
	})
}

// @Router /api/rewards/categories/{id} [put]
func (h *RewardHandler) UpdateCategory(ctx *fasthttp.RequestCtx) {
	var req transport.RewardCategoryRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Category updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdateCategory(c, p, pathParam(ctx, "id"), categoryInput(req))
	})
}

// @Router /api/rewards/categories/{id} [delete]
func (h *RewardHandler) DeleteCategory(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Category deleted successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.DeleteCategory(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/rewards/redemptions [get]
func (h *RewardHandler) ListRedemptions(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.ListRedemptions(stdCtx, p, rewardUC.RedemptionListInput{
		StudentID: query(ctx, "studentId"),
		Status:    query(ctx, "status"),
		Page:      pageFrom(ctx),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, result.Redemptions, result.Pagination)
}

// @Router /api/rewards/redemptions/{id}/review [post]
func (h *RewardHandler) ReviewRedemption(ctx *fasthttp.RequestCtx) {
	var req transport.RedemptionReviewRequest
	if !h.decode(ctx, &req) {
		return
	}
	approve := req.Status == string(domain.RedemptionApproved)
	message := "Redemption approved"
	if !approve {
		message = "Redemption rejected and points refunded"
	}
	h.serve(ctx, http.StatusOK, message, func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.ReviewRedemption(c, p, pathParam(ctx, "id"), rewardUC.ReviewInput{Approve: approve, Feedback: req.Feedback})
	})
}

// @Router /api/rewards/redemptions/{id}/cancel [post]
func (h *RewardHandler) CancelRedemption(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Redemption cancelled and points refunded", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CancelRedemption(c, p, pathParam(ctx, "id"))
	})
}

func categoryInput(req transport.RewardCategoryRequest) rewardUC.CategoryInput {
	return rewardUC.CategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Icon:         req.Icon,
		Color:        req.Color,
		Visibility:   req.Visibility,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
	}
}
