package handler

import (
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	categoryUC "github.com/amankumar-in/univance/usecase/category"
)

type CategoryHandler struct {
	baseHandler
	uc *categoryUC.UseCase
}

func NewCategoryHandler(uc *categoryUC.UseCase, opts Options) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(opts),
		uc:          uc,
	}
}

// @Router /api/tasks/categories [get]
func (h *CategoryHandler) List(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.List(stdCtx, p, categoryUC.ListInput{
		Type:            query(ctx, "type"),
		SchoolID:        query(ctx, "schoolId"),
		ParentID:        query(ctx, "parentCategory"),
		CreatedBy:       query(ctx, "createdBy"),
		IncludeInactive: queryBool(ctx, "includeInactive"),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", categories)
}

// @Router /api/tasks/categories/context/{context} [get]
func (h *CategoryHandler) ForContext(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	context := categoryUC.Context(pathParam(ctx, "context"))
	categories, err := h.uc.ForContext(stdCtx, p, context)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", map[string]interface{}{
		"categories": categories,
		"context":    context,
	})
}

// @Router /api/tasks/categories/{id} [get]
func (h *CategoryHandler) Get(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.Get(stdCtx, p, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", category)
}

// @Router /api/tasks/categories [post]
func (h *CategoryHandler) Create(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.CategoryRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.Create(stdCtx, p, categoryUC.CreateInput{
		Name:              req.Name,
		Description:       req.Description,
		Icon:              req.Icon,
		Color:             req.Color,
		ParentCategory:    req.ParentCategory,
		Type:              domain.CategoryType(req.Type),
		DefaultPointValue: req.DefaultPointValue,
		SchoolID:          req.SchoolID,
		Subject:           req.Subject,
		GradeLevel:        req.GradeLevel,
		Visibility:        domain.CategoryVisibility(req.Visibility),
		DisplayOrder:      req.DisplayOrder,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, "Category created successfully", category)
}

// @Router /api/tasks/categories/{id} [put]
func (h *CategoryHandler) Update(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.CategoryUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch := categoryUC.Patch{
		Name:              req.Name,
		Description:       req.Description,
		Icon:              req.Icon,
		Color:             req.Color,
		ParentCategory:    req.ParentCategory,
		DefaultPointValue: req.DefaultPointValue,
		Subject:           req.Subject,
		GradeLevel:        req.GradeLevel,
		DisplayOrder:      req.DisplayOrder,
	}
	if req.Visibility != nil {
		v := domain.CategoryVisibility(*req.Visibility)
		patch.Visibility = &v
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.Update(stdCtx, p, pathParam(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Category updated successfully", category)
}

// @Router /api/tasks/categories/{id} [delete]
func (h *CategoryHandler) Delete(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, p, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Category deleted successfully", nil)
}

// @Router /api/tasks/categories/defaults [post]
func (h *CategoryHandler) CreateDefaults(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateDefaults(stdCtx, p)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	total := len(domain.DefaultCategories())
	message := fmt.Sprintf("Default categories initialized: %d created, %d already existed", len(created), total-len(created))
	h.respondSuccess(ctx, http.StatusOK, message, created)
}
