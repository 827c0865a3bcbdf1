package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"
)

const defaultMaxBodyBytes = 5 << 20

// Error classes recorded on a failed FetchAttempt.
const (
	ErrorClassTimeout   = "timeout"
	ErrorClassTransport = "transport"
	ErrorClassStatus    = "status"
	ErrorClassRead      = "read"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchAttempt records the outcome of a single strategy.
type FetchAttempt struct {
	Profile    string        `json:"profile"`
	Timeout    time.Duration `json:"timeout"`
	Success    bool          `json:"success"`
	ErrorClass string        `json:"errorClass,omitempty"`
	StatusCode int           `json:"statusCode,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// FetchResult is the content returned by a successful strategy.
type FetchResult struct {
	URL         string
	FinalURL    string
	Content     string
	ContentType string
	Profile     string
	Attempts    []FetchAttempt
}

// StatusError reports a non-2xx response after redirects were followed.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// Fetcher retrieves page content by walking a cascade of header profiles.
type Fetcher struct {
	client       Doer
	profiles     *ProfileSet
	sleep        func(ctx context.Context, d time.Duration) error
	maxBodyBytes int64
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) FetcherOption {
	return func(f *Fetcher) { f.client = d }
}

// WithSleep replaces the function used for inter-attempt delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) { f.sleep = fn }
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *Fetcher) { f.maxBodyBytes = n }
}

// NewFetcher creates a fetcher over the given profile set. A nil set uses the built-in profiles.
// The default transport refuses private and loopback addresses; WithDoer replaces it.
func NewFetcher(profiles *ProfileSet, opts ...FetcherOption) *Fetcher {
	if profiles == nil {
		profiles = DefaultProfileSet()
	}
	f := &Fetcher{
		client:       newPublicClient(),
		profiles:     profiles,
		sleep:        sleepContext,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the content at rawURL using the first strategy that succeeds.
// It fails with *FetchError only after every strategy has failed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("unsupported url %q", rawURL)
		}
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return f.runCascade(ctx, u.String(), f.profiles.Cascade(u.String()))
}

func (f *Fetcher) runCascade(ctx context.Context, target string, strategies []Strategy) (*FetchResult, error) {
	var attempts []FetchAttempt
	var lastErr error

	for _, s := range strategies {
		if s.Delay > 0 {
			log.Printf("[Fetcher] Waiting %s before fetching %s", s.Delay, target)
			if err := f.sleep(ctx, s.Delay); err != nil {
				lastErr = err
				break
			}
		}

		result, attempt, err := f.attempt(ctx, target, s.Profile, nil)
		attempts = append(attempts, attempt)
		if err == nil {
			result.Attempts = attempts
			log.Printf("[Fetcher] Fetched %s with profile %s (%d bytes, attempt %d)",
				target, s.Profile.Name, len(result.Content), len(attempts))
			return result, nil
		}

		log.Printf("[Fetcher] Profile %s failed for %s: %v", s.Profile.Name, target, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &FetchError{URL: target, Attempts: attempts, Err: lastErr}
}

func (f *Fetcher) attempt(ctx context.Context, target string, p Profile, cookies []*http.Cookie) (*FetchResult, FetchAttempt, error) {
	record := FetchAttempt{Profile: p.Name, Timeout: p.Timeout}
	start := time.Now()

	attemptCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		record.ErrorClass = ErrorClassTransport
		return nil, record, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		record.ErrorClass = classifyTransportError(err)
		record.Duration = time.Since(start)
		return nil, record, err
	}
	defer resp.Body.Close()

	record.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		record.ErrorClass = ErrorClassStatus
		record.Duration = time.Since(start)
		return nil, record, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		record.ErrorClass = classifyTransportError(err)
		if record.ErrorClass == ErrorClassTransport {
			record.ErrorClass = ErrorClassRead
		}
		record.Duration = time.Since(start)
		return nil, record, fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	record.Success = true
	record.Duration = time.Since(start)
	return &FetchResult{
		URL:         target,
		FinalURL:    finalURL,
		Content:     string(body),
		ContentType: resp.Header.Get("Content-Type"),
		Profile:     p.Name,
	}, record, nil
}

func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassTransport
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
