// Package httpx sends requests to the spreadsheet API, retrying transient
// failures when asked to, and decodes compressed response bodies.
package httpx

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding is what callers advertise; readBody decodes both.
const AcceptEncoding = "br, gzip"

// HTTPError is a non-2xx response that was not, or no longer, retried.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("httpx: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// RetryConfig bounds how often a request is sent. Every 5xx and the statuses
// in RetryStatuses are retried, except that a POST is only resent after 429:
// the sheet may already have appended the row.
type RetryConfig struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	RetryStatuses map[int]bool
}

// Attempts returns a config that sends a request at most n times.
func Attempts(n int) RetryConfig {
	if n < 1 {
		n = 1
	}
	return RetryConfig{
		MaxAttempts: n,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests: true,
			http.StatusRequestTimeout:  true,
		},
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	d := Attempts(c.MaxAttempts)
	if c.BaseDelay > 0 {
		d.BaseDelay = c.BaseDelay
	}
	if c.MaxDelay > 0 {
		d.MaxDelay = c.MaxDelay
	}
	if c.RetryStatuses != nil {
		d.RetryStatuses = c.RetryStatuses
	}
	return d
}

func (c RetryConfig) retryable(method string, err error) bool {
	var herr *HTTPError
	if errors.As(err, &herr) {
		if herr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if method == http.MethodPost {
			return false
		}
		return herr.StatusCode >= 500 || c.RetryStatuses[herr.StatusCode]
	}
	return method != http.MethodPost && transient(err)
}

// backoff doubles BaseDelay per attempt up to MaxDelay and adds up to 250ms
// of jitter. A Retry-After from the server wins, capped at MaxDelay.
func (c RetryConfig) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, c.MaxDelay)
	}
	d := c.BaseDelay << (attempt - 1)
	if d <= 0 || d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
}

// DoWithRetry sends the request built by buildReq until it gets a 2xx, a
// failure that is not worth retrying, or runs out of attempts. The body is
// always drained so the connection can be reused.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	cfg = cfg.withDefaults()

	for attempt := 1; ; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		resp, body, err := send(client, req)
		if err == nil {
			return resp, body, nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.retryable(req.Method, err) {
			return resp, body, err
		}
		if werr := wait(ctx, cfg.backoff(attempt, retryAfter(err))); werr != nil {
			return nil, nil, werr
		}
	}
}

func send(client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return resp, body, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, body, nil
	}
	return resp, body, &HTTPError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
}

// readBody drains and closes the body, undoing brotli or gzip content encoding.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		if resp.Uncompressed {
			break
		}
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("httpx: gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

// transient reports network failures that may succeed when sent again.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func retryAfter(err error) time.Duration {
	var herr *HTTPError
	if !errors.As(err, &herr) {
		return 0
	}
	return ParseRetryAfter(herr.Header)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. Missing, invalid or past values give 0.
func ParseRetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

// DoJSON is DoWithRetry plus decoding of a 2xx body into out. A nil out
// discards the body.
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
	cfg RetryConfig,
) error {
	_, body, err := DoWithRetry(ctx, client, buildReq, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpx: decode json: %w (body %s)", err, snippet(body, 300))
	}
	return nil
}
