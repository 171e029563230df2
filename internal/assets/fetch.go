// Package assets fetches and caches the dashboard's decorative Lottie
// animation. Failures never reach the page: the animation is just skipped.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 4 << 20

// FetchError describes a failed asset fetch.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status=%d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrInvalidAnimation is returned when a body is not a Lottie document.
var ErrInvalidAnimation = errors.New("not a lottie animation")

// Animation is a parsed Lottie document.
type Animation struct {
	Data      any     `json:"-"`
	Width     float64 `json:"w"`
	Height    float64 `json:"h"`
	FrameRate float64 `json:"fr"`
}

// Options configures retries and timeouts.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Fetcher downloads animations through a Cache.
type Fetcher struct {
	httpClient  *http.Client
	cache       Cache
	log         zerolog.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher. A nil cache means a fresh MemoryCache.
func NewFetcher(cache Cache, opt Options, log zerolog.Logger) *Fetcher {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}
	if opt.MaxAttempts <= 0 {
		opt.MaxAttempts = 3
	}
	if opt.BaseDelay <= 0 {
		opt.BaseDelay = 500 * time.Millisecond
	}
	return &Fetcher{
		httpClient:  &http.Client{Timeout: opt.Timeout},
		cache:       cache,
		log:         log,
		maxAttempts: opt.MaxAttempts,
		baseDelay:   opt.BaseDelay,
		maxDelay:    opt.MaxDelay,
		sleep:       sleepCtx,
	}
}

// Load is Fetch for the page: any failure is logged and yields nil.
func (f *Fetcher) Load(ctx context.Context, url string) *Animation {
	if url == "" {
		return nil
	}
	a, err := f.Fetch(ctx, url)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("animation unavailable")
		return nil
	}
	return a
}

// Fetch returns the animation at url, from the cache when present. Only
// valid animations are cached, so a failure is retried on the next call.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Animation, error) {
	if b, ok, err := f.cache.Get(ctx, url); err != nil {
		f.log.Warn().Err(err).Msg("asset cache read failed")
	} else if ok {
		if a, err := Parse(b); err == nil {
			return a, nil
		}
	}
	body, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	a, err := Parse(body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: http.StatusOK, Attempts: 1, Err: err}
	}
	if err := f.cache.Set(ctx, url, body); err != nil {
		f.log.Warn().Err(err).Msg("asset cache write failed")
	}
	return a, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	backoff := f.baseDelay
	var lastErr *FetchError
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, &FetchError{URL: url, Attempts: attempt - 1, Err: ctx.Err()}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &FetchError{URL: url, Err: fmt.Errorf("build request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = &FetchError{URL: url, Attempts: attempt, Err: err}
			if isRetryableNetErr(err) && attempt < f.maxAttempts {
				if err := f.wait(ctx, backoff, 0); err != nil {
					return nil, lastErr
				}
				backoff *= 2
				continue
			}
			return nil, lastErr
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			if readErr != nil {
				return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Attempts: attempt, Err: readErr}
			}
			return body, nil
		}
		lastErr = &FetchError{URL: url, StatusCode: resp.StatusCode, Attempts: attempt}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt == f.maxAttempts {
			return nil, lastErr
		}
		var after time.Duration
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
				after = time.Duration(secs) * time.Second
			}
		}
		f.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("retrying asset fetch")
		if err := f.wait(ctx, backoff, after); err != nil {
			return nil, lastErr
		}
		backoff *= 2
	}
	return nil, lastErr
}

// wait sleeps for the jittered backoff, or retryAfter when given, capped at
// maxDelay.
func (f *Fetcher) wait(ctx context.Context, backoff, retryAfter time.Duration) error {
	d := withJitter(backoff)
	if retryAfter > 0 {
		d = retryAfter
	}
	if f.maxDelay > 0 && d > f.maxDelay {
		d = f.maxDelay
	}
	return f.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	widthPath  = jp.MustParseString("$.w")
	heightPath = jp.MustParseString("$.h")
	ratePath   = jp.MustParseString("$.fr")
	layersPath = jp.MustParseString("$.layers")
)

// Parse validates a Lottie document and extracts its dimensions and frame
// rate.
func Parse(body []byte) (*Animation, error) {
	data, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnimation, err)
	}
	if _, ok := data.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidAnimation)
	}
	a := &Animation{Data: data}
	for _, f := range []struct {
		path jp.Expr
		name string
		dst  *float64
	}{
		{widthPath, "w", &a.Width},
		{heightPath, "h", &a.Height},
		{ratePath, "fr", &a.FrameRate},
	} {
		n, ok := number(f.path.Get(data))
		if !ok || n <= 0 {
			return nil, fmt.Errorf("%w: missing or invalid %q", ErrInvalidAnimation, f.name)
		}
		*f.dst = n
	}
	if layers := layersPath.Get(data); len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidAnimation)
	} else if _, ok := layers[0].([]any); !ok {
		return nil, fmt.Errorf("%w: layers is not an array", ErrInvalidAnimation)
	}
	return a, nil
}

func number(results []any) (float64, bool) {
	if len(results) == 0 {
		return 0, false
	}
	switch v := results[0].(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseRetryAfterSeconds interprets a Retry-After value as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	// jitter factor in [0.8, 1.2)
	out := time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	if out <= 0 {
		return d
	}
	return out
}
