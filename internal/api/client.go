// Package api is the typed request layer against the theft-protection admin
// service. It attaches the bearer token, normalizes error shapes, and decodes
// responses; it never interprets trust policy, which lives server-side.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"traceguard/internal/domain"
)

const instrumentationName = "traceguard/internal/api"

// TokenSource yields the current bearer token, or empty when logged out.
// session.Store satisfies it.
type TokenSource interface {
	Read() (string, error)
}

// Client issues the fixed set of admin operations. Safe for concurrent use.
type Client struct {
	base      string
	http      *http.Client
	tokens    TokenSource
	userAgent string
	tracer    trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header sent on every request. Keep it in
// sync with the fingerprint's user-agent signal so the service can describe
// the trusted device.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a client for the given base URL, e.g. "http://localhost:8080".
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login exchanges credentials plus the claimed device fingerprint for a
// bearer token. The service accepts the fingerprint only if it matches the
// account's trusted device (or binds it on first login).
func (c *Client) Login(ctx context.Context, email, password, fingerprint string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, "Login", http.MethodPost, "/api/admin/auth/login", nil, map[string]string{
		"email":       email,
		"password":    password,
		"fingerprint": fingerprint,
	}, &out)
	return out, err
}

type changePasswordResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

// ChangePassword rotates the account password and returns the fresh token.
// The service invalidates every previously issued token as a side effect;
// callers must persist the new token before making another request.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	var out changePasswordResponse
	err := c.do(ctx, "ChangePassword", http.MethodPost, "/api/admin/auth/change-password", nil, map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// Summary fetches the fleet counters.
func (c *Client) Summary(ctx context.Context) (domain.Summary, error) {
	var out domain.Summary
	err := c.do(ctx, "Summary", http.MethodGet, "/api/admin/devices/summary", nil, nil, &out)
	return out, err
}

// ListQuery filters the device list. Since/Until are absolute instants; the
// controller layer owns converting calendar dates into them.
type ListQuery struct {
	Text  string
	Since *time.Time
	Until *time.Time
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Since != nil {
		v.Set("since", q.Since.UTC().Format(time.RFC3339))
	}
	if q.Until != nil {
		v.Set("until", q.Until.UTC().Format(time.RFC3339))
	}
	return v
}

type deviceListResponse struct {
	Devices []domain.Device `json:"devices"`
}

// ListDevices fetches the registered devices matching the query.
func (c *Client) ListDevices(ctx context.Context, query ListQuery) ([]domain.Device, error) {
	var out deviceListResponse
	err := c.do(ctx, "ListDevices", http.MethodGet, "/api/admin/devices", query.values(), nil, &out)
	return out.Devices, err
}

type deviceResponse struct {
	Device domain.Device `json:"device"`
}

// GetDevice fetches one device by id.
func (c *Client) GetDevice(ctx context.Context, deviceID string) (domain.Device, error) {
	var out deviceResponse
	path := "/api/admin/devices/" + url.PathEscape(deviceID)
	err := c.do(ctx, "GetDevice", http.MethodGet, path, nil, nil, &out)
	return out.Device, err
}

type locationLogsResponse struct {
	Logs []domain.LocationLog `json:"logs"`
}

// LocationLogs fetches a device's position history, newest first as returned
// by the service.
func (c *Client) LocationLogs(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
	var out locationLogsResponse
	path := "/api/admin/devices/" + url.PathEscape(deviceID) + "/logs"
	err := c.do(ctx, "LocationLogs", http.MethodGet, path, ListQuery{Since: since, Until: until}.values(), nil, &out)
	return out.Logs, err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, method, path, query, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token, err := c.tokens.Read(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, errorMessage(payload))
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// errorMessage pulls the service's human-readable message out of the error
// envelope. Unparseable bodies fall back to the generic HTTP message.
func errorMessage(payload []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}
