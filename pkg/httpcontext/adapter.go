package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/amankumar-in/univance/pkg/logger"
)

const headerRequestID = "X-Request-ID"

// Adapter turns a fasthttp.RequestCtx into a context.Context bounded by the request timeout.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach derives the request context and echoes the request id back to the client.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(headerRequestID, reqID)
	return appLogger.ContextWithRequest(stdCtx, reqID, ClientIP(ctx)), cancel
}

// ClientIP prefers the first X-Forwarded-For hop, as the services run behind the gateway.
func ClientIP(ctx *fasthttp.RequestCtx) string {
	if fwd := string(ctx.Request.Header.Peek("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := ctx.RemoteIP(); ip != nil && !ip.IsUnspecified() {
		return ip.String()
	}
	return ""
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(headerRequestID))); header != "" {
		return header
	}
	return uuid.NewString()
}
