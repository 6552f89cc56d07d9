// Package client is the typed REST client for the back-office API. Every
// page talks to the backend through it, so authentication and error shapes
// live in one place.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the backend. Detail carries the
// server's {"detail": ...} message when there is one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status=%d", e.StatusCode)
	}

	return fmt.Sprintf("api error: status=%d, detail=%s", e.StatusCode, e.Detail)
}

// Unwrap maps status codes onto record sentinels so callers can use
// errors.Is on both sides of the wire.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return record.ErrNotFound
	case http.StatusConflict:
		return record.ErrConflict
	case http.StatusUnprocessableEntity:
		return record.ErrInvalidTransition
	case http.StatusBadRequest:
		return record.ErrInvalid
	}

	return nil
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func New(baseURL, token string, opts ...Option) *Client {
	rc := resty.New()
	rc.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)

	if token != "" {
		rc.SetAuthToken(token)
	}

	for _, o := range opts {
		o(rc)
	}

	return &Client{http: rc}
}

func path(kind record.Kind, suffix string) (string, error) {
	p := api.Path(kind)
	if p == "" {
		return "", fmt.Errorf("%w: unknown kind %q", record.ErrInvalid, kind)
	}

	return p + suffix, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, result any) error {
	apiErr := new(api.ErrorResponse)

	req := c.http.R().
		SetContext(ctx).
		SetError(apiErr)

	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode(), Detail: apiErr.Detail}
	}

	return nil
}

// Me returns the identity behind the configured token.
func (c *Client) Me(ctx context.Context) (*api.Identity, error) {
	var id api.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &id); err != nil {
		return nil, err
	}

	return &id, nil
}

func (c *Client) List(ctx context.Context, kind record.Kind) ([]*record.Record, error) {
	p, err := path(kind, "")
	if err != nil {
		return nil, err
	}

	var out []api.Record
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}

	return api.ToRecords(out), nil
}

// View asks the backend to derive a page server-side.
func (c *Client) View(ctx context.Context, kind record.Kind, crit record.Criteria, page, pageSize int) (record.View, error) {
	p, err := path(kind, "/view")
	if err != nil {
		return record.View{}, err
	}

	if q := api.EncodeQuery(crit, page, pageSize).Encode(); q != "" {
		p += "?" + q
	}

	var out api.View
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return record.View{}, err
	}

	return out.View(), nil
}

func (c *Client) Get(ctx context.Context, kind record.Kind, id uuid.UUID) (*record.Record, error) {
	p, err := path(kind, "/"+id.String())
	if err != nil {
		return nil, err
	}

	var out api.Record
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}

	return out.Record(), nil
}

func (c *Client) Create(ctx context.Context, kind record.Kind, req api.CreateRequest) (*record.Record, error) {
	p, err := path(kind, "")
	if err != nil {
		return nil, err
	}

	var out api.Record
	if err := c.do(ctx, http.MethodPost, p, req, &out); err != nil {
		return nil, err
	}

	return out.Record(), nil
}

func (c *Client) Delete(ctx context.Context, kind record.Kind, id uuid.UUID) error {
	p, err := path(kind, "/"+id.String())
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, p, nil, nil)
}

// UpdateStatus moves a record to status. version 0 skips the stale check.
func (c *Client) UpdateStatus(ctx context.Context, kind record.Kind, id uuid.UUID, status record.Status, version int64) (*record.Record, error) {
	p, err := path(kind, "/"+id.String()+"/status")
	if err != nil {
		return nil, err
	}

	var out api.Record
	if err := c.do(ctx, http.MethodPatch, p, api.StatusRequest{Status: status, Version: version}, &out); err != nil {
		return nil, err
	}

	return out.Record(), nil
}

func (c *Client) Summary(ctx context.Context, kind record.Kind) ([]record.KPI, error) {
	p, err := path(kind, "/summary")
	if err != nil {
		return nil, err
	}

	var out []api.KPI
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}

	return api.ToKPIs(out), nil
}

// Export streams the filtered collection into w in the named format, "xlsx"
// or "pdf". Empty means the server default, xlsx.
func (c *Client) Export(ctx context.Context, kind record.Kind, crit record.Criteria, format string, w io.Writer) error {
	p, err := path(kind, "/export")
	if err != nil {
		return err
	}

	q := api.EncodeQuery(crit, 0, 0)
	if format != "" {
		q.Set("format", format)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q).
		SetDoNotParseResponse(true).
		Get(p)
	if err != nil {
		return fmt.Errorf("GET %s: %w", p, err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(body).Decode(&apiErr)

		return &APIError{StatusCode: resp.StatusCode(), Detail: apiErr.Detail}
	}

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	return nil
}

// Import uploads a CSV file in the named importer format. When some
// references already exist the backend answers 409; the split is returned
// together with an *APIError so the caller can confirm or abort.
func (c *Client) Import(ctx context.Context, kind record.Kind, format, filename string, r io.Reader) (*api.ImportResponse, error) {
	p, err := path(kind, "/import")
	if err != nil {
		return nil, err
	}

	out := new(api.ImportResponse)

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, r).
		SetFormData(map[string]string{"format": format}).
		SetResult(out).
		SetError(out).
		Post(p)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", p, err)
	}

	switch {
	case resp.StatusCode() == http.StatusConflict:
		return out, &APIError{StatusCode: resp.StatusCode(), Detail: "duplicate references"}
	case resp.StatusCode() >= http.StatusBadRequest:
		var apiErr api.ErrorResponse
		_ = json.Unmarshal(resp.Body(), &apiErr)

		return nil, &APIError{StatusCode: resp.StatusCode(), Detail: apiErr.Detail}
	}

	return out, nil
}

// ConfirmImport writes rows without duplicate detection, typically the New
// half of a conflicting import.
func (c *Client) ConfirmImport(ctx context.Context, kind record.Kind, params []api.CreateRequest) ([]*record.Record, error) {
	p, err := path(kind, "/import/confirm")
	if err != nil {
		return nil, err
	}

	var out api.ImportResponse
	if err := c.do(ctx, http.MethodPost, p, api.ConfirmRequest{Params: params}, &out); err != nil {
		return nil, err
	}

	return api.ToRecords(out.Imported), nil
}
