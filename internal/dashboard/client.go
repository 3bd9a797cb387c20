// Package dashboard fetches the raw T5G dashboard collections.
//
// Each source is one GET against <base>/<source>. The client decodes the
// body with casedata.Decode so object key order survives into the merge.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
)

// Source names one dashboard collection.
type Source string

const (
	Cards       Source = "cards"
	Cases       Source = "cases"
	Escalations Source = "escalations"
	Issues      Source = "issues"
	Bugs        Source = "bugs"
	Details     Source = "details"
)

// AllSources lists every collection in fetch order.
var AllSources = []Source{Cards, Cases, Escalations, Issues, Bugs, Details}

// ParseSource validates a source name.
func ParseSource(name string) (Source, error) {
	for _, s := range AllSources {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown dashboard source %q", name)
}

// maxBodyBytes caps a single response body.
const maxBodyBytes = 64 << 20

// Observer receives one call per completed request.
type Observer interface {
	ObserveFetch(source string, err error, elapsed time.Duration)
}

// Client talks to the dashboard API.
type Client struct {
	base     *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	observer Observer
	logger   *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithRateLimit bounds requests per second. A non-positive limit disables
// limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithObserver reports each request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the dashboard rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("dashboard base URL is empty")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("dashboard URL %q is not absolute", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the dashboard root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// FetchRaw returns the undecoded body for src.
func (c *Client) FetchRaw(ctx context.Context, src Source) (body []byte, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveFetch(string(src), err, time.Since(start))
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetching %s: %w", src, err)
		}
	}

	endpoint := c.base.JoinPath(string(src)).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: src, StatusCode: resp.StatusCode}
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}

	c.logger.Debug("fetched dashboard source",
		zap.String("source", string(src)),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// Fetch returns the decoded payload for src.
func (c *Client) Fetch(ctx context.Context, src Source) (any, error) {
	body, err := c.FetchRaw(ctx, src)
	if err != nil {
		return nil, err
	}
	v, err := casedata.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	return v, nil
}

// FetchAll fetches the six sources concurrently. The first failure
// cancels the remaining requests and is returned.
func (c *Client) FetchAll(ctx context.Context) (casedata.Sources, error) {
	var src casedata.Sources
	targets := map[Source]*any{
		Cards:       &src.Cards,
		Cases:       &src.Cases,
		Escalations: &src.Escalations,
		Issues:      &src.Issues,
		Bugs:        &src.Bugs,
		Details:     &src.Details,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range AllSources {
		dst := targets[s]
		g.Go(func() error {
			v, err := c.Fetch(gctx, s)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return casedata.Sources{}, err
	}
	return src, nil
}

// StatusError is returned for non-2xx dashboard responses.
type StatusError struct {
	Source     Source
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: dashboard returned %d %s", e.Source, e.StatusCode, http.StatusText(e.StatusCode))
}
