package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	httperr "github.com/loglens-io/loglens/internal/core/errors"
	"github.com/loglens-io/loglens/internal/core/storage"
	"github.com/loglens-io/loglens/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeReportStore struct {
	rows      []storage.LatencyRow
	rowsErr   error
	event     *v1.LogEvent
	eventErr  error
	gotTable  string
	gotDay    time.Time
	gotLogID  string
	gotLookup string
}

func (s *fakeReportStore) LatenciesByEvent(_ context.Context, _, table string, day time.Time) ([]storage.LatencyRow, error) {
	s.gotTable = table
	s.gotDay = day
	if s.rowsErr != nil {
		return nil, s.rowsErr
	}
	return s.rows, nil
}

func (s *fakeReportStore) GetEventByID(_ context.Context, _, table, logID string) (*v1.LogEvent, error) {
	s.gotLookup = table
	s.gotLogID = logID
	if s.eventErr != nil {
		return nil, s.eventErr
	}
	return s.event, nil
}

func rankedRows() []storage.LatencyRow {
	ts := time.Date(2023, 6, 30, 8, 36, 40, 0, time.UTC)
	return []storage.LatencyRow{
		{EventName: "CHECKOUT", MaxLatencyMs: 200, AvgLatencyMs: decimal.RequireFromString("156.6667"), MinLatencyMs: 120, Timestamp: ts, UserIP: "203.0.113.7", LogID: "log-1"},
		{EventName: "LOGIN", MaxLatencyMs: 100, AvgLatencyMs: decimal.RequireFromString("53.3333"), MinLatencyMs: 10, Timestamp: ts, UserIP: "203.0.113.8", LogID: "log-2"},
		{EventName: "LOGOUT", MaxLatencyMs: 80, AvgLatencyMs: decimal.NewFromInt(80), MinLatencyMs: 80, Timestamp: ts, UserIP: "203.0.113.9", LogID: "log-3"},
	}
}

func newReportRouter(store *fakeReportStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(store, render.NewHTMLRenderer(), "telemetry_prod", "https://loglens.example.com")
	svc.nowFn = func() time.Time { return time.Date(2023, 6, 30, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func postReport(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGenerateHandler_Success(t *testing.T) {
	store := &fakeReportStore{rows: rankedRows()}
	r := newReportRouter(store)

	resp := postReport(t, r, map[string]string{
		"service": "portal",
		"region":  "asia-southeast1",
		"date":    "2023-06-30",
		"type":    TypeByLatencies,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "portal-asia-southeast1", store.gotTable)
	require.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), store.gotDay)

	var result struct {
		File string `json:"file"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "Fri Jun 30 2023", result.Date)

	doc, err := base64.StdEncoding.DecodeString(result.File)
	require.NoError(t, err)
	html := string(doc)

	// Partition order is preserved: highest max latency first.
	require.Contains(t, html, "<th>EVENT NAME</th>")
	require.Contains(t, html, "200.00ms")
	require.Contains(t, html, "156.67ms")
	require.Contains(t, html, "30-06-2023 08:36:40 UTC")
	require.Less(t, bytes.Index(doc, []byte("CHECKOUT")), bytes.Index(doc, []byte("LOGIN")))
	require.Less(t, bytes.Index(doc, []byte("LOGIN")), bytes.Index(doc, []byte("LOGOUT")))
	require.Contains(t, html,
		`<a href="https://loglens.example.com/v1/logs/entry?log_id=log-1&amp;service=portal&amp;region=asia-southeast1">log-1</a>`)
}

func TestGenerateHandler_DefaultsToToday(t *testing.T) {
	store := &fakeReportStore{rows: rankedRows()}
	r := newReportRouter(store)

	resp := postReport(t, r, map[string]string{
		"service": "portal",
		"region":  "asia-southeast1",
		"type":    TypeByLatencies,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, store.gotDay.IsZero())

	var result struct {
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "Fri Jun 30 2023", result.Date)
}

func TestGenerateHandler_InvalidType(t *testing.T) {
	store := &fakeReportStore{rows: rankedRows()}
	r := newReportRouter(store)

	for _, reportType := range []string{"BY_ENTITIES", "BY_IP", "bogus"} {
		resp := postReport(t, r, map[string]string{
			"service": "portal",
			"region":  "asia-southeast1",
			"type":    reportType,
		})

		require.Equal(t, http.StatusBadRequest, resp.Code)
		var errResp httperr.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
		require.Equal(t, httperr.HttpValidationError, errResp.ErrorType)
		require.Equal(t, "Invalid type", errResp.Message)
	}
	require.Empty(t, store.gotTable)
}

func TestGenerateHandler_NoData(t *testing.T) {
	store := &fakeReportStore{rowsErr: storage.ErrNoData}
	r := newReportRouter(store)

	resp := postReport(t, r, map[string]string{
		"service": "portal",
		"region":  "asia-southeast1",
		"type":    TypeByLatencies,
	})

	require.Equal(t, http.StatusNotFound, resp.Code)
	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpNoDataError, errResp.ErrorType)
	require.Equal(t, "No data found", errResp.Message)
}

func TestGenerateHandler_QueryFailure(t *testing.T) {
	store := &fakeReportStore{rowsErr: errors.New("relation does not exist")}
	r := newReportRouter(store)

	resp := postReport(t, r, map[string]string{
		"service": "portal",
		"region":  "asia-southeast1",
		"type":    TypeByLatencies,
	})

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpReportQueryError, errResp.ErrorType)
}

func TestGenerateHandler_MissingFields(t *testing.T) {
	r := newReportRouter(&fakeReportStore{})

	resp := postReport(t, r, map[string]string{"service": "portal"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLookupHandler(t *testing.T) {
	const logID = "3b241101-e2bb-4255-8caf-4136c566a962"

	t.Run("returns stored event", func(t *testing.T) {
		store := &fakeReportStore{event: &v1.LogEvent{LogID: logID, EventName: "LOGIN", Service: "portal"}}
		r := newReportRouter(store)

		req := httptest.NewRequest(http.MethodGet,
			"/v1/logs/entry?service=portal&region=asia-southeast1&log_id="+logID, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "portal-asia-southeast1", store.gotLookup)
		require.Equal(t, logID, store.gotLogID)

		var evt v1.LogEvent
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &evt))
		require.Equal(t, "LOGIN", evt.EventName)
	})

	t.Run("missing entry returns 404", func(t *testing.T) {
		store := &fakeReportStore{eventErr: storage.ErrNotFound}
		r := newReportRouter(store)

		req := httptest.NewRequest(http.MethodGet,
			"/v1/logs/entry?service=portal&region=asia-southeast1&log_id="+logID, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusNotFound, resp.Code)
		var errResp httperr.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
		require.Equal(t, httperr.HttpNotFoundError, errResp.ErrorType)
	})

	t.Run("non-uuid log_id is rejected", func(t *testing.T) {
		r := newReportRouter(&fakeReportStore{})

		req := httptest.NewRequest(http.MethodGet,
			"/v1/logs/entry?service=portal&region=asia-southeast1&log_id=not-a-uuid", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
