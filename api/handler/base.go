package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/amankumar-in/univance/api/transport"
	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/internal/middleware"
	"github.com/amankumar-in/univance/pkg/httpcontext"
	"github.com/amankumar-in/univance/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Options carries the settings every handler shares.
type Options struct {
	Adapter    *httpcontext.Adapter
	Logger     *zap.Logger
	Production bool
}

type baseHandler struct {
	adapter    *httpcontext.Adapter
	logger     *zap.Logger
	production bool
}

func newBaseHandler(opts Options) baseHandler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return baseHandler{adapter: opts.Adapter, logger: log, production: opts.Production}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	var (
		stdCtx context.Context
		cancel context.CancelFunc
	)
	if h.adapter != nil {
		stdCtx, cancel = h.adapter.Attach(ctx)
	} else {
		stdCtx, cancel = context.WithCancel(context.Background())
	}
	if p, ok := middleware.PrincipalFrom(ctx); ok {
		stdCtx = logger.ContextWithCaller(stdCtx, p.UserID, string(p.Role))
	}
	return stdCtx, cancel
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, message string, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(message, data))
}

func (h baseHandler) respondPage(ctx *fasthttp.RequestCtx, data interface{}, pagination domain.Pagination) {
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(data, pagination))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, message := mapError(err)
	detail := ""
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		if !h.production {
			detail = err.Error()
		}
	}
	h.respondJSON(ctx, status, transport.NewError(message, detail))
}

func (h baseHandler) badRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(message, ""))
}

func mapError(err error) (int, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch dErr.Code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, dErr.Message
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, dErr.Message
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, dErr.Message
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, dErr.Message
	case domain.ErrCodeConflict:
		return http.StatusConflict, dErr.Message
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, dErr.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// principal returns the authenticated caller or writes a 401.
func (h baseHandler) principal(ctx *fasthttp.RequestCtx) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError("Authentication required", ""))
	}
	return p, ok
}

// decode unmarshals and validates the request body into dst.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.badRequest(ctx, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.badRequest(ctx, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func query(ctx *fasthttp.RequestCtx, name string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(name)))
}

func queryBool(ctx *fasthttp.RequestCtx, name string) bool {
	v, _ := strconv.ParseBool(query(ctx, name))
	return v
}

// queryTime parses RFC 3339 timestamps or plain dates. Unparseable values are ignored.
func queryTime(ctx *fasthttp.RequestCtx, name string) *time.Time {
	raw := query(ctx, name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func pageFrom(ctx *fasthttp.RequestCtx) domain.Page {
	return domain.NewPage(
		parseInt(query(ctx, "page"), 1),
		parseInt(query(ctx, "limit"), domain.DefaultPageSize),
	)
}

// serve runs an authenticated call that takes no body and answers with a single object.
func (h baseHandler) serve(ctx *fasthttp.RequestCtx, status int, message string,
	call func(context.Context, *domain.Principal) (interface{}, error)) {
	p, ok := h.principal(ctx)
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	data, err := call(stdCtx, p)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, message, data)
}
