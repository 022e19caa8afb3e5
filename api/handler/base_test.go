package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/infrastructure/monitor"
	"github.com/amankumar-in/univance/pkg/httpcontext"
)

func envelopeOf(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound, "task not found"},
		{fmt.Errorf("load: %w", domain.ErrTaskNotFound), http.StatusNotFound, "task not found"},
		{domain.Invalid("title is required"), http.StatusBadRequest, "title is required"},
		{domain.Forbidden("not yours"), http.StatusForbidden, "not yours"},
		{domain.NewError(domain.ErrCodeUnauthorized, "who are you"), http.StatusUnauthorized, "who are you"},
		{domain.NewError(domain.ErrCodeConflict, "duplicate"), http.StatusConflict, "duplicate"},
		{domain.NewError(domain.ErrCodeUnavailable, "points down"), http.StatusServiceUnavailable, "points down"},
		{domain.NewError(domain.ErrCodeInternal, "secret"), http.StatusInternalServerError, "Internal server error"},
		{errors.New("pgx: boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, message := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestRespondError_HidesDetailInProduction(t *testing.T) {
	cause := errors.New("connection reset")

	var dev fasthttp.RequestCtx
	newBaseHandler(Options{}).respondError(&dev, cause)
	assert.Equal(t, http.StatusInternalServerError, dev.Response.StatusCode())
	assert.Equal(t, "connection reset", envelopeOf(t, &dev).Error)

	var prod fasthttp.RequestCtx
	newBaseHandler(Options{Production: true}).respondError(&prod, cause)
	env := envelopeOf(t, &prod)
	assert.False(t, env.Success)
	assert.Empty(t, env.Error)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestDecode(t *testing.T) {
	h := newBaseHandler(Options{})
	tests := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{name: "valid", body: `{"frequency":"weekly","daysOfWeek":[1,3]}`, ok: true},
		{name: "malformed", body: `{"frequency":`, message: "Invalid request body"},
		{name: "empty body", body: ``, message: "Validation failed: frequency is required"},
		{name: "bad enum", body: `{"frequency":"hourly"}`, message: "Validation failed: frequency must be one of [daily weekly monthly]"},
		{name: "bad weekday", body: `{"frequency":"weekly","daysOfWeek":[9]}`, message: "Validation failed: daysOfWeek[0] is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			ctx.Request.SetBodyString(tt.body)

			var req transport.ScheduleRequest
			ok := h.decode(&ctx, &req)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "weekly", req.Frequency)
				return
			}
			assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
			assert.Equal(t, tt.message, envelopeOf(t, &ctx).Message)
		})
	}
}

func TestServe(t *testing.T) {
	h := newBaseHandler(Options{Adapter: httpcontext.NewAdapter(time.Second)})
	call := func(ctx context.Context, p *domain.Principal) (interface{}, error) {
		if p.Role != domain.RoleParent {
			return nil, domain.Forbidden("parents only")
		}
		_, hasDeadline := ctx.Deadline()
		return map[string]bool{"deadline": hasDeadline}, nil
	}

	var anonymous fasthttp.RequestCtx
	h.serve(&anonymous, http.StatusOK, "", call)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Response.StatusCode())

	var student fasthttp.RequestCtx
	student.SetUserValue("principal", &domain.Principal{UserID: "u1", Role: domain.RoleStudent})
	h.serve(&student, http.StatusOK, "", call)
	assert.Equal(t, http.StatusForbidden, student.Response.StatusCode())
	assert.Equal(t, "parents only", envelopeOf(t, &student).Message)

	var parent fasthttp.RequestCtx
	parent.SetUserValue("principal", &domain.Principal{UserID: "u2", Role: domain.RoleParent})
	h.serve(&parent, http.StatusCreated, "Created", call)
	assert.Equal(t, http.StatusCreated, parent.Response.StatusCode())
	env := envelopeOf(t, &parent)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]interface{}{"deadline": true}, env.Data)
	assert.NotEmpty(t, parent.Response.Header.Peek("X-Request-ID"))
}

func TestPageFrom(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/tasks?page=3&limit=5&includeHidden=true&dueFrom=2024-03-01")

	page := pageFrom(&ctx)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 5, page.Size)
	assert.True(t, queryBool(&ctx, "includeHidden"))
	require.NotNil(t, queryTime(&ctx, "dueFrom"))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *queryTime(&ctx, "dueFrom"))
	assert.Nil(t, queryTime(&ctx, "dueTo"))
}

func TestListQueryDefaults(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		assigned string
		page     domain.Page
	}{
		{name: "no query", uri: "/api/tasks", page: domain.Page{Number: 1, Size: 20}},
		{name: "assignedTo", uri: "/api/tasks?assignedTo=student&limit=50", assigned: "student", page: domain.Page{Number: 1, Size: 50}},
		{name: "older assignedRole", uri: "/api/tasks?assignedRole=parent&page=2", assigned: "parent", page: domain.Page{Number: 2, Size: 20}},
		{name: "assignedTo wins", uri: "/api/tasks?assignedTo=teacher&assignedRole=parent", assigned: "teacher", page: domain.Page{Number: 1, Size: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			ctx.Request.SetRequestURI(tt.uri)
			assert.Equal(t, tt.assigned, assignedRole(&ctx))
			assert.Equal(t, tt.page, pageFrom(&ctx))
		})
	}
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		status monitor.Status
		code   int
		state  string
	}{
		{"healthy", monitor.Status{PostgreSQL: true, Redis: true, Outbox: true}, http.StatusOK, "ok"},
		{"redis down", monitor.Status{PostgreSQL: true, Outbox: true, OutboxPending: 4}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("task-service", staticStatus(tt.status), Options{})
			var ctx fasthttp.RequestCtx
			h.Check(&ctx)

			assert.Equal(t, tt.code, ctx.Response.StatusCode())
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
			assert.Equal(t, tt.state, body["status"])
			assert.Equal(t, "task-service", body["service"])
		})
	}
}
