package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// IdempotencyHeader carries the outbox key so peers can drop duplicate deliveries.
const IdempotencyHeader = "Idempotency-Key"

// StatusError is returned when a peer answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Config describes one peer service.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type peer struct {
	client  *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
}

func newPeer(client *fasthttp.Client, cfg Config) peer {
	if client == nil {
		client = &fasthttp.Client{
			Name:                "univance",
			MaxConnsPerHost:     64,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return peer{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: cfg.Timeout,
	}
}

func (p peer) do(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	url := p.baseURL + path
	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if p.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+p.token)
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	deadline := time.Now().Add(p.timeout)
	if ctx != nil {
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		snippet := string(resp.Body())
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return &StatusError{Method: method, URL: url, Code: status, Body: snippet}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}
