package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, origins ...string) *Server {
	t.Helper()
	st := testutil.NewStore(t)
	testutil.MustSeed(t, st, testutil.StandardFixture())
	return New(st, origins)
}

func get(t *testing.T, s *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListInvoices(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices")
	require.Equal(t, http.StatusOK, rec.Code)

	docs := decode[[]model.InvoiceDocument](t, rec)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].Number)
	assert.Equal(t, "Acme Ltd", docs[0].Recipient.Name)

	nums := make([]int64, len(docs[0].Activities))
	for i, a := range docs[0].Activities {
		nums[i] = a.Number
	}
	assert.Equal(t, []int64{1, 3, 5}, nums)
}

func TestListInvoices_Filters(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"by number", "?num=2", []int64{2}},
		{"by month", "?month=2024-05", []int64{1}},
		{"unpadded month", "?month=2024-6", []int64{2}},
		{"empty month", "?month=2023-01", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/invoices"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			docs := decode[[]model.InvoiceDocument](t, rec)
			got := make([]int64, len(docs))
			for i, d := range docs {
				got[i] = d.Number
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListInvoices_BadRequest(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"?num=1&month=2024-05", "?num=abc", "?month=May"} {
		t.Run(q, func(t *testing.T) {
			rec := get(t, s, "/api/invoices"+q)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGetInvoice(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices/1")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode[model.InvoiceDocument](t, rec)
	assert.Equal(t, "2024-05", doc.Month.String())
	assert.Nil(t, doc.Created)
	assert.InDelta(t, 4.0, doc.TotalDuration(), 1e-9)
}

func TestGetInvoice_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to uniquely identify an invoice: no match")
}

func TestGetInvoice_BadNumber(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices/one")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTimesheet(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices/1/timesheet.csv")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="2024-5-timesheet-1.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `"Start","End","Duration","Tickets","Description"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"2024-05-01 08:00:00"`), lines[1])
	assert.Contains(t, lines[3], `"Pairing"`)
}

func TestGetTimesheet_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices/42/timesheet.csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActivities(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"all", "", []int64{1, 2, 3, 5}},
		{"of invoice", "?invoice=1", []int64{1, 3, 5}},
		{"in month", "?month=2024-06", []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/activities"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			acts := decode[[]model.ActivityWithRollup](t, rec)
			got := make([]int64, len(acts))
			for i, a := range acts {
				got[i] = a.Number
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListActivities_Rollup(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/activities?invoice=1")
	require.Equal(t, http.StatusOK, rec.Code)

	acts := decode[[]model.ActivityWithRollup](t, rec)
	require.Len(t, acts, 3)

	assert.InDelta(t, 3.5, acts[0].TotalDuration, 1e-9)
	assert.Equal(t, []string{"OPS-1", "OPS-2", "WEB-7"}, acts[0].Tickets.Strings())
	assert.Len(t, acts[0].Times, 3)

	assert.Empty(t, acts[1].Times)
	assert.Zero(t, acts[1].TotalDuration)
}

func TestListActivities_BadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/activities?invoice=1&month=2024-05")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, "http://localhost:5173")

	rec := get(t, s, "/api/invoices", "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(t, s, "/api/invoices", "Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/invoices", "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
