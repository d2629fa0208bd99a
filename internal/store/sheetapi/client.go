// Package sheetapi talks to the spreadsheet-backed programs API.
package sheetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/httpx"
	"gradtrack/internal/store"
)

const (
	contentTypeJSON = "application/json"
	acceptJSON      = contentTypeJSON
	programsPath    = "/programs"
	storeName       = "sheetapi"
)

// Client implements store.Store over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	Log     *zap.Logger
}

var _ store.Store = (*Client)(nil)

// New builds a client that sends every request once. Callers that want the
// transport to retry set Retry themselves.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		Retry: httpx.Attempts(1),
		Log:   zap.NewNop(),
	}
}

func (c *Client) Name() string { return storeName }

// List fetches the whole collection. The API answers with a bare JSON array
// of label-keyed rows.
func (c *Client) List(ctx context.Context) ([]domain.WireRecord, error) {
	var rows []domain.WireRecord
	err := httpx.DoJSON(ctx, c.HTTP, c.request(http.MethodGet, c.BaseURL+programsPath, nil), &rows, c.Retry)
	if err != nil {
		return nil, &store.FetchError{Store: storeName, Err: err}
	}
	if rows == nil {
		rows = []domain.WireRecord{}
	}
	c.logger().Debug("listed programs", zap.Int("count", len(rows)))
	return rows, nil
}

func (c *Client) Create(ctx context.Context, payload domain.WireRecord) error {
	return c.write(ctx, store.OpCreate, http.MethodPost, c.BaseURL+programsPath, payload.Identity(), payload)
}

// Update replaces every editable field of the program at id. The payload may
// carry a new identity (a rename); the path always names the old one.
func (c *Client) Update(ctx context.Context, id domain.Identity, payload domain.WireRecord) error {
	return c.write(ctx, store.OpUpdate, http.MethodPut, c.programURL(id), id, payload)
}

func (c *Client) Delete(ctx context.Context, id domain.Identity) error {
	return c.write(ctx, store.OpDelete, http.MethodDelete, c.programURL(id), id, nil)
}

// programURL escapes each identity token on its own so a "/" inside a title
// cannot split the path.
func (c *Client) programURL(id domain.Identity) string {
	return c.BaseURL + programsPath + "/" + url.PathEscape(id.SchoolName) + "/" + url.PathEscape(id.ProgramTitle)
}

func (c *Client) write(ctx context.Context, op, method, target string, id domain.Identity, payload domain.WireRecord) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &store.WriteError{Store: storeName, Op: op, Identity: id, Err: err}
		}
		body = b
	}

	_, _, err := httpx.DoWithRetry(ctx, c.HTTP, c.request(method, target, body), c.Retry)
	if err != nil {
		if httpx.StatusCode(err) == http.StatusNotFound {
			err = fmt.Errorf("%w: %w", store.ErrNotFound, err)
		}
		return &store.WriteError{Store: storeName, Op: op, Identity: id, Err: err}
	}
	c.logger().Info("program written", zap.String("op", op), zap.Stringer("program", id))
	return nil
}

func (c *Client) request(method, target string, body []byte) func(context.Context) (*http.Request, error) {
	requestID := uuid.NewString()
	return func(ctx context.Context) (*http.Request, error) {
		var r *http.Request
		var err error
		if body != nil {
			r, err = http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		} else {
			r, err = http.NewRequestWithContext(ctx, method, target, nil)
		}
		if err != nil {
			return nil, err
		}
		if body != nil {
			r.Header.Set("Content-Type", contentTypeJSON)
		}
		r.Header.Set("Accept", acceptJSON)
		r.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		r.Header.Set("X-Request-ID", requestID)
		return r, nil
	}
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
