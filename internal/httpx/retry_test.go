package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

// fastRetry keeps the backoff below the jitter so tests stay quick.
func fastRetry(n int) RetryConfig {
	cfg := Attempts(n)
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

// scripted answers with statuses in order, then 200 with body.
func scripted(t *testing.T, body string, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			io.WriteString(w, `{"detail":"try later"}`)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func build(method, url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, method, url, nil)
	}
}

func TestDoWithRetry(t *testing.T) {
	testCases := []struct {
		name      string
		method    string
		attempts  int
		statuses  []int
		wantCalls int32
		wantCode  int
	}{
		{"success", http.MethodGet, 1, nil, 1, 0},
		{"single attempt surfaces 503", http.MethodGet, 1, []int{503}, 1, 503},
		{"list recovers from 503", http.MethodGet, 3, []int{503, 502}, 3, 0},
		{"attempts exhausted", http.MethodGet, 2, []int{500, 500, 500}, 2, 500},
		{"404 is final", http.MethodDelete, 3, []int{404}, 1, 404},
		{"create not resent after 500", http.MethodPost, 3, []int{500}, 1, 500},
		{"create resent after 429", http.MethodPost, 3, []int{429}, 2, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := scripted(t, `[]`, tc.statuses...)

			_, body, err := DoWithRetry(context.Background(), srv.Client(), build(tc.method, srv.URL), fastRetry(tc.attempts))

			if got := calls.Load(); got != tc.wantCalls {
				t.Errorf("Expected %d requests, got %d", tc.wantCalls, got)
			}
			if tc.wantCode == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if string(body) != `[]` {
					t.Errorf("Expected body [], got %q", body)
				}
				return
			}
			if got := StatusCode(err); got != tc.wantCode {
				t.Errorf("Expected HTTPError %d, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestDoWithRetryBuildError(t *testing.T) {
	buildReq := func(context.Context) (*http.Request, error) {
		return nil, errors.New("bad base url")
	}

	_, _, err := DoWithRetry(context.Background(), http.DefaultClient, buildReq, Attempts(3))
	if err == nil || err.Error() != "bad base url" {
		t.Errorf("Expected build error, got %v", err)
	}
}

func TestDoWithRetryStopsWhenCanceled(t *testing.T) {
	srv, calls := scripted(t, `[]`, 503, 503, 503)
	ctx, cancel := context.WithCancel(context.Background())

	cfg := Attempts(3)
	cfg.BaseDelay = time.Hour
	cfg.MaxDelay = time.Hour
	time.AfterFunc(20*time.Millisecond, cancel)

	_, _, err := DoWithRetry(ctx, srv.Client(), build(http.MethodGet, srv.URL), cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 request before cancel, got %d", got)
	}
}

func TestDoJSON(t *testing.T) {
	srv, _ := scripted(t, `[{"School Name":"ETH Zurich","Fit Score":10}]`)

	var rows []map[string]any
	if err := DoJSON(context.Background(), srv.Client(), build(http.MethodGet, srv.URL), &rows, Attempts(1)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 || rows[0]["School Name"] != "ETH Zurich" || rows[0]["Fit Score"] != 10.0 {
		t.Errorf("unexpected rows %v", rows)
	}

	if err := DoJSON(context.Background(), srv.Client(), build(http.MethodGet, srv.URL), nil, Attempts(1)); err != nil {
		t.Errorf("Expected no error with nil output, got %v", err)
	}
}

func TestDoJSONInvalidJSON(t *testing.T) {
	srv, _ := scripted(t, `<html>maintenance</html>`)

	var rows []map[string]any
	err := DoJSON(context.Background(), srv.Client(), build(http.MethodGet, srv.URL), &rows, Attempts(1))
	if err == nil || !strings.Contains(err.Error(), "httpx: decode json") || !strings.Contains(err.Error(), "maintenance") {
		t.Errorf("Expected decode error quoting the body, got %v", err)
	}
}

func TestReadBody(t *testing.T) {
	const payload = `[{"School Name":"ETH Zurich"}]`

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(payload))
	bw.Close()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(payload))
	gw.Close()

	testCases := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"plain", "", []byte(payload)},
		{"brotli", "br", br.Bytes()},
		{"gzip", "gzip", gz.Bytes()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: 200,
				Header:     http.Header{},
				Body:       io.NopCloser(bytes.NewReader(tc.body)),
			}
			if tc.encoding != "" {
				resp.Header.Set("Content-Encoding", tc.encoding)
			}

			data, err := readBody(resp)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if string(data) != payload {
				t.Errorf("Expected body %q, got %q", payload, data)
			}
		})
	}
}
