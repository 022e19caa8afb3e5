package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	profileUC "github.com/amankumar-in/univance/usecase/profile"
)

// ProfileHandler serves users and student profiles.
type ProfileHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewProfileHandler(uc *profileUC.UseCase, opts Options) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(opts),
		uc:          uc,
	}
}

// @Summary Get the caller's user
// @Tags users
// @Router /api/users/me [get]
func (h *ProfileHandler) GetMe(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.GetUser(c, p)
	})
}

// @Summary Update the caller's user
// @Tags users
// @Router /api/users/me [put]
func (h *ProfileHandler) UpdateMe(ctx *fasthttp.RequestCtx) {
	var req transport.UserRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Profile updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdateUser(c, p, profileUC.UserInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Avatar:    req.Avatar,
		})
	})
}

// @Router /api/users/students/profile [post]
func (h *ProfileHandler) CreateStudentProfile(ctx *fasthttp.RequestCtx) {
	var req transport.StudentProfileRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Student profile created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateStudentProfile(c, p, profileUC.CreateStudentInput{Grade: req.Grade, SchoolID: req.SchoolID})
	})
}

// @Router /api/users/students/me [get]
func (h *ProfileHandler) MyStudentProfile(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.MyStudentProfile(c, p)
	})
}

// @Router /api/users/students/user/{userId} [get]
func (h *ProfileHandler) StudentByUserID(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.StudentByUserID(c, p, pathParam(ctx, "userId"))
	})
}

// @Router /api/users/students/{id} [get]
func (h *ProfileHandler) StudentByID(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.StudentByID(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/students/{id} [put]
func (h *ProfileHandler) UpdateStudentProfile(ctx *fasthttp.RequestCtx) {
	var req transport.StudentUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Student profile updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdateStudentProfile(c, p, pathParam(ctx, "id"), profileUC.StudentPatch{Grade: req.Grade, Level: req.Level})
	})
}

// @Router /api/users/students/{id}/points-account [put]
func (h *ProfileHandler) UpdatePointsAccount(ctx *fasthttp.RequestCtx) {
	var req transport.PointsAccountRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Points account updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdatePointsAccount(c, p, pathParam(ctx, "id"), req.PointsAccountID)
	})
}

// @Router /api/users/students/{id}/level [get]
func (h *ProfileHandler) StudentLevel(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.StudentLevel(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/students/{id}/badges [get]
func (h *ProfileHandler) StudentBadges(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.StudentBadges(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/students/link/parent [post]
func (h *ProfileHandler) LinkWithParent(ctx *fasthttp.RequestCtx) {
	var req transport.ParentLinkRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Successfully linked with parent", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.LinkWithParent(c, p, req.ParentLinkCode)
	})
}

// @Router /api/users/students/link/school [post]
func (h *ProfileHandler) LinkWithSchool(ctx *fasthttp.RequestCtx) {
	var req transport.SchoolLinkRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Successfully linked with school", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.LinkWithSchool(c, p, req.SchoolCode)
	})
}

// @Router /api/users/students/{id}/parents/{parentId} [delete]
func (h *ProfileHandler) UnlinkFromParent(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Successfully unlinked from parent", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.UnlinkFromParent(c, p, pathParam(ctx, "id"), pathParam(ctx, "parentId"))
	})
}

// @Router /api/users/students/{id}/school [delete]
func (h *ProfileHandler) UnlinkFromSchool(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "Successfully unlinked from school", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return nil, h.uc.UnlinkFromSchool(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/students/parent-requests [get]
func (h *ProfileHandler) ParentRequests(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.ParentRequests(c, p)
	})
}

// @Router /api/users/students/parent-requests/{requestId} [post]
func (h *ProfileHandler) RespondParentRequest(ctx *fasthttp.RequestCtx) {
	var req transport.LinkResponseRequest
	if !h.decode(ctx, &req) {
		return
	}
	action := profileUC.RequestAction(req.Action)
	message := "Parent link request approved"
	if action == profileUC.RequestReject {
		message = "Parent link request rejected"
	}
	h.serve(ctx, http.StatusOK, message, func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.RespondParentRequest(c, p, pathParam(ctx, "requestId"), action)
	})
}
