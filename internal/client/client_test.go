package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/client"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newServer(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return client.New(srv.URL, "token-123", client.WithTimeout(2*time.Second))
}

func TestClient_List(t *testing.T) {
	id := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, []api.Record{
			{ID: id, Kind: record.KindQuote, Reference: "COT-992", Status: record.StatusSent, Amount: 450000000, Counterparty: "Inversiones Global", Version: 3},
		})
	})

	c := newServer(t, mux)

	recs, err := c.List(context.Background(), record.KindQuote)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].ID)
	assert.Equal(t, record.StatusSent, recs[0].Status)
	assert.Equal(t, int64(3), recs[0].Version)
}

func TestClient_UpdateStatus(t *testing.T) {
	id := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/shipments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, id.String(), r.PathValue("id"))

		var req api.StatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, record.StatusDelivered, req.Status)
		assert.Equal(t, int64(4), req.Version)

		writeJSON(t, w, http.StatusOK, api.Record{ID: id, Kind: record.KindShipment, Status: req.Status, Version: 5})
	})

	c := newServer(t, mux)

	r, err := c.UpdateStatus(context.Background(), record.KindShipment, id, record.StatusDelivered, 4)
	require.NoError(t, err)
	assert.Equal(t, record.StatusDelivered, r.Status)
	assert.Equal(t, int64(5), r.Version)
}

func TestClient_Errors(t *testing.T) {
	type testCase struct {
		name       string
		status     int
		detail     string
		wantTarget error
	}

	tests := []testCase{
		{name: "NotFound", status: http.StatusNotFound, detail: "record not found", wantTarget: record.ErrNotFound},
		{name: "Conflict", status: http.StatusConflict, detail: "record was modified concurrently", wantTarget: record.ErrConflict},
		{name: "InvalidTransition", status: http.StatusUnprocessableEntity, detail: "invalid status transition", wantTarget: record.ErrInvalidTransition},
		{name: "BadRequest", status: http.StatusBadRequest, detail: "invalid record", wantTarget: record.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, api.ErrorResponse{Detail: tt.detail})
			})

			c := newServer(t, mux)

			_, err := c.UpdateStatus(context.Background(), record.KindPayment, uuid.New(), record.StatusPaid, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantTarget)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestClient_UnknownKind(t *testing.T) {
	c := client.New("http://127.0.0.1:1", "")

	_, err := c.List(context.Background(), "invoice")
	assert.ErrorIs(t, err, record.ErrInvalid)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url, "", client.WithTimeout(time.Second))

	_, err := c.List(context.Background(), record.KindPayment)
	require.Error(t, err)

	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ViewAndSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /receivables/view", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "marta", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(t, w, http.StatusOK, api.View{
			Items:      []api.Record{{Reference: "CC-001"}},
			Page:       2,
			PageSize:   10,
			TotalPages: 2,
			TotalCount: 11,
		})
	})
	mux.HandleFunc("GET /receivables/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []api.KPI{
			{Key: "pending_total", Label: "Pending total", Display: record.DisplayCurrency, Value: decimal.NewFromInt(450000)},
		})
	})

	c := newServer(t, mux)
	ctx := context.Background()

	v, err := c.View(ctx, record.KindReceivable, record.Criteria{Query: "marta"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, v.TotalCount)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "CC-001", v.Items[0].Reference)

	kpis, err := c.Summary(ctx, record.KindReceivable)
	require.NoError(t, err)
	require.Len(t, kpis, 1)
	assert.True(t, decimal.NewFromInt(450000).Equal(kpis[0].Value))
}

func TestClient_Export(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "paid", r.URL.Query().Get("status"))
		assert.Equal(t, "pdf", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK-bytes"))
	})

	c := newServer(t, mux)

	var buf bytes.Buffer
	require.NoError(t, c.Export(context.Background(), record.KindExpense, record.Criteria{Status: "paid"}, "pdf", &buf))
	assert.Equal(t, "PK-bytes", buf.String())
}

func TestClient_Import(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /expenses/import", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ledger", r.FormValue("format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		body, _ := io.ReadAll(f)
		assert.Equal(t, "expenses.csv", hdr.Filename)
		assert.Contains(t, string(body), "FAC-1")

		if strings.Contains(string(body), "FAC-2") {
			writeJSON(t, w, http.StatusConflict, api.ImportResponse{
				New:       []api.CreateRequest{{Reference: "FAC-1"}},
				Conflicts: []api.ImportConflict{{Incoming: api.CreateRequest{Reference: "FAC-2"}}},
			})

			return
		}

		writeJSON(t, w, http.StatusCreated, api.ImportResponse{Imported: []api.Record{{Reference: "FAC-1"}}})
	})

	c := newServer(t, mux)
	ctx := context.Background()

	resp, err := c.Import(ctx, record.KindExpense, "ledger", "expenses.csv", strings.NewReader("reference\nFAC-1\n"))
	require.NoError(t, err)
	require.Len(t, resp.Imported, 1)

	resp, err = c.Import(ctx, record.KindExpense, "ledger", "expenses.csv", strings.NewReader("reference\nFAC-1\nFAC-2\n"))
	require.ErrorIs(t, err, record.ErrConflict)
	require.NotNil(t, resp)
	assert.Len(t, resp.New, 1)
	assert.Equal(t, "FAC-2", resp.Conflicts[0].Incoming.Reference)
}
