package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-confres"
)

const (
	DefaultPath      = "config.json"
	DefaultUserAgent = "confres/0.1"
	DefaultTimeout   = 5 * time.Second

	maxPayloadBytes = 4 << 20
)

// ErrNoLocation is returned when a relative config path has no location to
// resolve against.
var ErrNoLocation = errors.New("retrieve: location is required to resolve a relative config path")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("retrieve: %s returned status %d", e.URL, e.StatusCode)
}

// HTTPOption configures an HTTP retriever.
type HTTPOption func(*HTTP)

// WithPath sets the configuration path. Relative paths resolve against the
// location's origin; absolute URLs are fetched as is.
func WithPath(path string) HTTPOption {
	return func(h *HTTP) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			h.path = trimmed
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTP) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) HTTPOption {
	return func(h *HTTP) {
		if trimmed := strings.TrimSpace(userAgent); trimmed != "" {
			h.userAgent = trimmed
		}
	}
}

// WithFormat forces the payload format instead of inferring it.
func WithFormat(format Format) HTTPOption {
	return func(h *HTTP) {
		h.format = format
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) HTTPOption {
	return func(h *HTTP) {
		h.logger = logger
	}
}

// HTTP fetches configuration from the deployment serving the location.
type HTTP struct {
	client    *http.Client
	path      string
	timeout   time.Duration
	userAgent string
	format    Format
	logger    zerolog.Logger
}

var _ confres.Retriever = (*HTTP)(nil)

// NewHTTP builds an HTTP retriever.
func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		path:      DefaultPath,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: h.timeout}
	}
	return h
}

// ConfigURL resolves the configuration URL for loc.
func (h *HTTP) ConfigURL(loc *confres.Location) (*url.URL, error) {
	ref, err := url.Parse(h.path)
	if err != nil {
		return nil, fmt.Errorf("retrieve: parse config path %q: %w", h.path, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	if loc == nil {
		return nil, ErrNoLocation
	}
	base := &url.URL{Scheme: loc.Scheme(), Host: loc.Host(), Path: "/"}
	return base.ResolveReference(ref), nil
}

// Retrieve implements confres.Retriever.
func (h *HTTP) Retrieve(ctx context.Context, loc *confres.Location) (confres.Values, error) {
	target, err := h.ConfigURL(loc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/javascript;q=0.9, */*;q=0.5")
	req.Header.Set("User-Agent", h.userAgent)

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve: execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	h.logger.Debug().Str("url", target.String()).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).Msg("config fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("retrieve: read response: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("retrieve: %s payload exceeds %d bytes", target, maxPayloadBytes)
	}

	return DecodePayload(h.formatFor(resp, target), body)
}

func (h *HTTP) formatFor(resp *http.Response, target *url.URL) Format {
	if h.format != "" {
		return h.format
	}
	if format, ok := FormatFromContentType(resp.Header.Get("Content-Type")); ok {
		return format
	}
	if format, ok := FormatFromPath(target.Path); ok {
		return format
	}
	return FormatJSON
}
