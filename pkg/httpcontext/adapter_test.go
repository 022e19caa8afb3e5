package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/amankumar-in/univance/pkg/logger"
)

func TestAdapter_Attach(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		forwarded string
		wantIP    string
	}{
		{name: "generated id", wantIP: ""},
		{name: "propagated id", requestID: "req-42", forwarded: "203.0.113.9, 10.0.0.1", wantIP: "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx fasthttp.RequestCtx
			if tt.requestID != "" {
				ctx.Request.Header.Set("X-Request-ID", tt.requestID)
			}
			if tt.forwarded != "" {
				ctx.Request.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
			defer cancel()

			id := appLogger.RequestID(stdCtx)
			assert.NotEmpty(t, id)
			if tt.requestID != "" {
				assert.Equal(t, tt.requestID, id)
			}
			assert.Equal(t, id, string(ctx.Response.Header.Peek("X-Request-ID")))
			assert.Equal(t, tt.wantIP, ClientIP(&ctx))

			deadline, ok := stdCtx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
		})
	}
}
