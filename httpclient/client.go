// Package httpclient sends HTTP requests built from normalized URLs and
// parameter values.
//
// The client normalizes the request URL with urlutil, appends Params as a
// form-encoded query string and renders Data as the request body with
// formutil. Each host gets its own circuit breaker and rate limiter, and
// failed attempts are retried with exponential backoff.
//
//	client := httpclient.NewClient(nil, false, 30*time.Second)
//	resp, err := client.Execute(ctx, httpclient.RequestOptions{
//		Method:   http.MethodPost,
//		URL:      "https://почта.рф/search",
//		Params:   []formutil.Pair{{Key: "q", Value: "go"}},
//		Data:     []formutil.Pair{{Key: "ids", Value: []int{1, 2}}},
//		SkipAuth: true,
//		Retry:    3,
//	})
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/lorien/weblib/formutil"
	"github.com/lorien/weblib/logutil"
	"github.com/lorien/weblib/urlutil"
)

const (
	// DefaultMaxResponseSize caps response bodies when RequestOptions.MaxResponseSize is zero.
	DefaultMaxResponseSize int64 = 100 * 1024 * 1024
	// DefaultBackoff is the delay before the first retry; it doubles on every attempt.
	DefaultBackoff = 100 * time.Millisecond
	// HeaderRequestID carries a per-request UUID shared by all retry attempts.
	HeaderRequestID = "X-Request-ID"
)

// TokenProvider supplies bearer tokens for authenticated requests.
type TokenProvider interface {
	GetToken(ctx context.Context, scope string) (string, error)
}

// RequestOptions describes a single logical request.
type RequestOptions struct {
	Method          string `validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	URL             string `validate:"required"`
	Params          []formutil.Pair
	Data            any
	Headers         map[string]string
	Scope           string
	SkipAuth        bool
	HTTPSOnly       bool
	Retry           int   `validate:"min=0,max=10"`
	MaxResponseSize int64 `validate:"min=0"`
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
	Attempts   int
}

// Option configures a Client.
type Option func(*Client)

// WithCircuitBreaker trips a host's breaker once at least failures requests
// were seen and 60% of them failed; it stays open for timeout.
func WithCircuitBreaker(failures int, timeout time.Duration) Option {
	return func(c *Client) {
		c.breakerFailures = failures
		c.breakerTimeout = timeout
	}
}

// WithRateLimit limits requests per host to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.rateLimit = rate.Limit(perSecond)
		c.rateBurst = burst
	}
}

// WithBackoff overrides DefaultBackoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client executes requests. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	provider   TokenProvider
	debug      bool
	log        *logutil.ComponentLogger
	validator  *RequestValidator
	backoff    time.Duration

	breakerFailures int
	breakerTimeout  time.Duration
	rateLimit       rate.Limit
	rateBurst       int

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client. provider may be nil when no request needs a
// token. With debug set every attempt is logged at info level.
func NewClient(provider TokenProvider, debug bool, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		provider:   provider,
		debug:      debug,
		log:        logutil.NewLogger("httpclient"),
		validator:  NewRequestValidator(),
		backoff:    DefaultBackoff,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
		limiters:   make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// prepared holds everything needed to rebuild a request for each attempt.
type prepared struct {
	method      string
	url         string
	host        string
	body        []byte
	contentType string
	headers     map[string]string
	requestID   string
}

func (c *Client) prepare(opts RequestOptions) (*prepared, error) {
	if err := c.validator.Validate(&opts); err != nil {
		return nil, err
	}

	u, err := urlutil.Normalize(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize url: %w", err)
	}
	if len(opts.Params) > 0 {
		fields, err := formutil.NormalizeHTTPValues(opts.Params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize params: %w", err)
		}
		query, err := formutil.EncodeForm(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode params: %w", err)
		}
		u = appendQuery(u, string(query))
	}
	validate := urlutil.Validate
	if opts.HTTPSOnly {
		validate = urlutil.ValidateHTTPSOnly
	}
	if err := validate(u); err != nil {
		return nil, err
	}

	p := &prepared{
		method:    opts.Method,
		url:       u,
		headers:   opts.Headers,
		requestID: uuid.New().String(),
	}
	if opts.Data != nil {
		p.body, err = formutil.NormalizePostData(opts.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize post data: %w", err)
		}
		if _, ok := opts.Data.([]formutil.Pair); ok {
			p.contentType = formutil.ContentType
		}
	}
	return p, nil
}

// appendQuery adds an encoded query to u, before any fragment.
func appendQuery(u, query string) string {
	if query == "" {
		return u
	}
	fragment := ""
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u, fragment = u[:i], u[i:]
	}
	switch {
	case !strings.Contains(u, "?"):
		u += "?"
	case !strings.HasSuffix(u, "?") && !strings.HasSuffix(u, "&"):
		u += "&"
	}
	return u + query + fragment
}

func (c *Client) newRequest(ctx context.Context, p *prepared, opts RequestOptions) (*http.Request, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.host = req.URL.Host

	req.Header.Set(HeaderRequestID, p.requestID)
	if p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	if !opts.SkipAuth && c.provider != nil {
		token, err := c.provider.GetToken(ctx, opts.Scope)
		if err != nil {
			return nil, fmt.Errorf("failed to get token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// BuildRequest returns the *http.Request that Execute would send first.
func (c *Client) BuildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	p, err := c.prepare(opts)
	if err != nil {
		return nil, err
	}
	return c.newRequest(ctx, p, opts)
}

// Execute sends the request, retrying up to opts.Retry times on 5xx responses
// and retryable network errors. 4xx responses are returned without retrying.
// When retries are exhausted on 5xx the last response is returned without an
// error.
func (c *Client) Execute(ctx context.Context, opts RequestOptions) (*Response, error) {
	p, err := c.prepare(opts)
	if err != nil {
		return nil, err
	}

	maxSize := opts.MaxResponseSize
	if maxSize == 0 {
		maxSize = DefaultMaxResponseSize
	}

	log := c.log.WithOperation("execute").WithFields("request_id", p.requestID, "method", p.method)

	var (
		resp    *Response
		lastErr error
	)
	for attempt := 0; attempt <= opts.Retry; attempt++ {
		if attempt > 0 {
			recordRetry(p.host)
			delay := c.backoff * time.Duration(1<<(attempt-1))
			log.Debug("retrying request", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := c.newRequest(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		if limiter := c.limiter(p.host); limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, lastErr = c.attempt(req, p.host, maxSize)
		if c.debug {
			log.Info("request attempt", "url", p.url, "attempt", attempt+1, "error", lastErr)
		}
		if lastErr == nil {
			resp.Attempts = attempt + 1
			if resp.StatusCode < http.StatusInternalServerError {
				return resp, nil
			}
			continue
		}

		if errors.Is(lastErr, gobreaker.ErrOpenState) || errors.Is(lastErr, gobreaker.ErrTooManyRequests) ||
			errors.Is(lastErr, ErrResponseTooLarge) || !isRetryableError(lastErr) {
			break
		}
	}

	if lastErr != nil {
		log.Warn("request failed", "url", p.url, "error", lastErr)
		return nil, lastErr
	}
	return resp, nil
}

// ErrResponseTooLarge indicates the response body exceeded MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds maximum size")

// errServer marks a 5xx response as a failure for the circuit breaker.
type errServer struct{ resp *Response }

func (e *errServer) Error() string {
	return fmt.Sprintf("server error: %d", e.resp.StatusCode)
}

// attempt performs one round trip through the host's circuit breaker.
func (c *Client) attempt(req *http.Request, host string, maxSize int64) (*Response, error) {
	start := time.Now()
	roundTrip := func() (*Response, error) {
		resp, err := c.do(req, maxSize)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &errServer{resp: resp}
		}
		return resp, nil
	}

	var (
		resp *Response
		err  error
	)
	if breaker := c.breaker(host); breaker != nil {
		var out interface{}
		out, err = breaker.Execute(func() (interface{}, error) { return roundTrip() })
		if err == nil {
			resp = out.(*Response)
		}
	} else {
		resp, err = roundTrip()
	}

	var serverErr *errServer
	if errors.As(err, &serverErr) {
		resp, err = serverErr.resp, nil
	}
	recordRequest(req.Method, host, resp, err, time.Since(start))
	return resp, err
}

func (c *Client) do(req *http.Request, maxSize int64) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrResponseTooLarge, maxSize)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		URL:        req.URL.String(),
	}, nil
}

func (c *Client) breaker(host string) *gobreaker.CircuitBreaker {
	if c.breakerFailures <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    c.breakerTimeout,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(c.breakerFailures) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed", "host", name, "from", from.String(), "to", to.String())
			recordBreakerState(name, to)
		},
	})
	c.breakers[host] = b
	return b
}

func (c *Client) limiter(host string) *rate.Limiter {
	if c.rateLimit <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters[host]; ok {
		return l
	}
	burst := c.rateBurst
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(c.rateLimit, burst)
	c.limiters[host] = l
	return l
}

// isRetryableError reports whether err looks like a transient network failure.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"context deadline exceeded",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"i/o timeout",
		"EOF",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
