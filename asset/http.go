package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
)

// Defaults for HTTP resolution.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond

	maxAssetBytes = 8 << 20
)

// HTTP resolves names relative to a base URL. Transient failures (network
// errors and 5xx responses) are retried with exponential backoff; a 404 is
// reported as ErrNotFound so a Chain can fall through.
type HTTP struct {
	base     *url.URL
	client   *http.Client
	attempts int
	delay    time.Duration
	logger   *zap.Logger
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithClient sets the HTTP client. Its timeout is left as is.
func WithClient(c *http.Client) HTTPOption { return func(h *HTTP) { h.client = c } }

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTP) { h.attempts, h.delay = attempts, delay }
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *zap.Logger) HTTPOption { return func(h *HTTP) { h.logger = l } }

// NewHTTP creates a source below baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("asset base url: %v: %w", err, fl.ErrInvalidParam)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset base url %q: scheme must be http or https: %w", baseURL, fl.ErrInvalidParam)
	}
	h := &HTTP{
		base:     u,
		client:   &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Resolve implements Source.
func (h *HTTP) Resolve(ctx context.Context, name string) (*fl.Asset, error) {
	for _, candidate := range candidates(name) {
		data, err := h.fetch(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w: %w", name, err, fl.ErrAssetResolution)
		}
		return Decode(candidate, data)
	}
	return nil, fmt.Errorf("asset %q: %w: %w", name, ErrNotFound, fl.ErrAssetResolution)
}

func (h *HTTP) fetch(ctx context.Context, name string) ([]byte, error) {
	u := *h.base
	u.Path = path.Join(u.Path, name)
	target := u.String()

	var data []byte
	err := retry(ctx, h.attempts, h.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.logger.Debug("asset fetch failed", zap.String("url", target), zap.Error(err))
			return &retryableError{err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode >= 500:
			h.logger.Debug("asset fetch failed", zap.String("url", target), zap.Int("status", resp.StatusCode))
			return &retryableError{fmt.Errorf("GET %s: %s", target, resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("GET %s: %s", target, resp.Status)
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
		if err != nil {
			return &retryableError{err}
		}
		if len(data) > maxAssetBytes {
			return fmt.Errorf("GET %s: larger than %d bytes", target, maxAssetBytes)
		}
		return nil
	})
	if err == nil {
		h.logger.Debug("asset fetched", zap.String("url", target), zap.Int("bytes", len(data)))
	}
	return data, err
}
