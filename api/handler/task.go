package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	taskUC "github.com/amankumar-in/univance/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, opts Options) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(opts),
		uc:          uc,
	}
}

// assignedRole reads the assignee role filter. assignedRole is the older spelling of assignedTo.
func assignedRole(ctx *fasthttp.RequestCtx) string {
	if role := query(ctx, "assignedTo"); role != "" {
		return role
	}
	return query(ctx, "assignedRole")
}

// @Summary List tasks
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}

	in := taskUC.ListInput{
		Role:         domain.Role(query(ctx, "role")),
		AssignedRole: assignedRole(ctx),
		CreatedBy:    query(ctx, "createdBy"),
		Category:     query(ctx, "category"),
		SubCategory:  query(ctx, "subCategory"),
		SchoolID:     query(ctx, "schoolId"),
		ClassID:      query(ctx, "classId"),
		Status:       query(ctx, "status"),
		DueDate:      queryTime(ctx, "dueDate"),
		StartDate:    queryTime(ctx, "startDate"),
		EndDate:      queryTime(ctx, "endDate"),
		Sort:         query(ctx, "sort"),
		Order:        query(ctx, "order"),
		Page:         pageFrom(ctx),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.ListTasks(stdCtx, p, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, result.Tasks, result.Pagination)
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	in := taskUC.CreateInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		SubCategory:        req.SubCategory,
		PointValue:         req.PointValue,
		AssignedTo:         req.Assignment(),
		DueDate:            req.DueDate,
		IsRecurring:        req.IsRecurring,
		RecurringSchedule:  req.Schedule(),
		RequiresApproval:   req.RequiresApproval,
		ApproverType:       domain.ApproverType(req.ApproverType),
		SpecificApproverID: req.SpecificApproverID,
		SchoolID:           req.SchoolID,
		ClassID:            req.ClassID,
		Difficulty:         req.Difficulty,
		ExternalResource:   req.ExternalResource,
		Attachments:        req.Attachments,
		Metadata:           req.Metadata,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, p, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, "Task created successfully", created)
}

// @Summary Get task
// @Tags tasks
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, p, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", task)
}

// @Summary Update task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, p, pathParam(ctx, "id"), req.Patch())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task updated successfully", updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, p, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task deleted successfully", nil)
}

// @Summary Complete task
// @Tags tasks
// @Router /api/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.CompleteTaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.CompleteTask(stdCtx, p, pathParam(ctx, "id"), taskUC.CompleteInput{
		Note:     req.Note,
		Evidence: req.Evidence,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	message := "Task marked as completed and pending approval"
	if task.Status == domain.StatusApproved {
		message = "Task completed and automatically approved"
	}
	h.respondSuccess(ctx, http.StatusOK, message, task)
}

// @Summary Approve or reject task
// @Tags tasks
// @Router /api/tasks/{id}/review [post]
func (h *TaskHandler) ReviewTask(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.ReviewTaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	action := taskUC.ReviewAction(req.Action)
	task, err := h.uc.ReviewTask(stdCtx, p, pathParam(ctx, "id"), action, req.Feedback)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	message := "Task approved successfully"
	if action == taskUC.ActionReject {
		message = "Task rejected successfully"
	}
	h.respondSuccess(ctx, http.StatusOK, message, task)
}

// @Summary Comment on task
// @Tags tasks
// @Router /api/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.CommentRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comment, err := h.uc.AddComment(stdCtx, p, pathParam(ctx, "id"), req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, "Comment added successfully", comment)
}

// @Summary Generate next recurring instance
// @Tags tasks
// @Router /api/tasks/{id}/next-instance [post]
func (h *TaskHandler) GenerateNextInstance(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.GenerateNextInstance(stdCtx, p, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	switch {
	case result.Ended:
		h.respondSuccess(ctx, http.StatusOK, "Recurring task has reached its end date", nil)
	case result.Created:
		h.respondSuccess(ctx, http.StatusCreated, "Next recurring task instance created", result.Task)
	default:
		h.respondSuccess(ctx, http.StatusOK, "Next recurring task instance already exists", result.Task)
	}
}

// @Summary Toggle task visibility for a student
// @Tags tasks
// @Router /api/tasks/visibility [post]
func (h *TaskHandler) ToggleVisibility(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	var req transport.VisibilityRequest
	if !h.decode(ctx, &req) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	saved, err := h.uc.ToggleVisibility(stdCtx, p, taskUC.ToggleVisibilityInput{
		TaskID:    req.TaskID,
		StudentID: req.StudentID,
		IsVisible: req.IsVisible,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "Task visibility updated successfully", saved)
}

// @Summary Task statistics
// @Tags tasks
// @Router /api/tasks/statistics [get]
func (h *TaskHandler) Statistics(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	filter := domain.StatsFilter{
		StudentID: query(ctx, "studentId"),
		SchoolID:  query(ctx, "schoolId"),
		ClassID:   query(ctx, "classId"),
		StartDate: queryTime(ctx, "startDate"),
		EndDate:   queryTime(ctx, "endDate"),
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Statistics(stdCtx, p, domain.ParseGroupBy(query(ctx, "groupBy")), filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", stats)
}

// @Summary Student task summary
// @Tags tasks
// @Router /api/tasks/students/{studentId}/summary [get]
func (h *TaskHandler) StudentSummary(ctx *fasthttp.RequestCtx) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.uc.StudentSummary(stdCtx, p, pathParam(ctx, "studentId"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, "", summary)
}
