package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	profileUC "github.com/amankumar-in/univance/usecase/profile"
)

// RelationshipHandler serves parent, teacher, school and class endpoints.
type RelationshipHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewRelationshipHandler(uc *profileUC.UseCase, opts Options) *RelationshipHandler {
	return &RelationshipHandler{
		baseHandler: newBaseHandler(opts),
		uc:          uc,
	}
}

// @Router /api/users/parents/profile [post]
func (h *RelationshipHandler) CreateParentProfile(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusCreated, "Parent profile created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateParentProfile(c, p)
	})
}

// @Router /api/users/parents/me [get]
func (h *RelationshipHandler) MyParentProfile(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.MyParentProfile(c, p)
	})
}

// @Router /api/users/parents/link-requests [post]
func (h *RelationshipHandler) RequestStudentLink(ctx *fasthttp.RequestCtx) {
	var req transport.StudentLinkRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Link request sent to student", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.RequestStudentLink(c, p, profileUC.StudentLinkInput{StudentID: req.StudentID, Email: req.Email})
	})
}

// @Router /api/users/teachers/profile [post]
func (h *RelationshipHandler) CreateTeacherProfile(ctx *fasthttp.RequestCtx) {
	var req transport.TeacherProfileRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Teacher profile created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateTeacherProfile(c, p, profileUC.CreateTeacherInput{
			SchoolID:       req.SchoolID,
			SubjectsTaught: req.SubjectsTaught,
		})
	})
}

// @Router /api/users/teachers/me [get]
func (h *RelationshipHandler) MyTeacherProfile(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.MyTeacherProfile(c, p)
	})
}

// @Router /api/users/teachers/{id} [get]
func (h *RelationshipHandler) TeacherByID(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.TeacherByID(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/teachers/{id}/subjects [put]
func (h *RelationshipHandler) UpdateSubjects(ctx *fasthttp.RequestCtx) {
	var req transport.SubjectsRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusOK, "Subjects updated successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.UpdateSubjects(c, p, pathParam(ctx, "id"), req.SubjectsTaught)
	})
}

// @Router /api/users/teachers/{id}/classes [get]
func (h *RelationshipHandler) TeacherClasses(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.TeacherClasses(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/schools [post]
func (h *RelationshipHandler) CreateSchool(ctx *fasthttp.RequestCtx) {
	var req transport.SchoolRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "School created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateSchool(c, p, profileUC.CreateSchoolInput{Name: req.Name, Address: req.Address})
	})
}

// @Router /api/users/schools/{id} [get]
func (h *RelationshipHandler) School(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.School(c, p, pathParam(ctx, "id"))
	})
}

// @Router /api/users/classes [post]
func (h *RelationshipHandler) CreateClass(ctx *fasthttp.RequestCtx) {
	var req transport.ClassRequest
	if !h.decode(ctx, &req) {
		return
	}
	h.serve(ctx, http.StatusCreated, "Class created successfully", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.CreateClass(c, p, profileUC.CreateClassInput{
			SchoolID:  req.SchoolID,
			Name:      req.Name,
			Grade:     req.Grade,
			TeacherID: req.TeacherID,
		})
	})
}

// @Router /api/users/classes/{id} [get]
func (h *RelationshipHandler) Class(ctx *fasthttp.RequestCtx) {
	h.serve(ctx, http.StatusOK, "", func(c context.Context, p *domain.Principal) (interface{}, error) {
		return h.uc.Class(c, p, pathParam(ctx, "id"))
	})
}
