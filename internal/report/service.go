package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/loglens-io/loglens/internal/core/storage"
	"github.com/loglens-io/loglens/internal/render"
	"github.com/shopspring/decimal"
)

// TypeByLatencies is the only supported report type. BY_ENTITIES and
// BY_IP were never wired and are rejected as invalid.
const TypeByLatencies = "BY_LATENCIES"

// ErrInvalidType marks an unsupported report type (HTTP 400).
var ErrInvalidType = errors.New("invalid report type")

var reportHeaders = []string{
	"EVENT NAME",
	"MAX LATENCY",
	"AVG LATENCY",
	"MIN LATENCY",
	"TIMESTAMP",
	"USER IP",
	"MAX LAG LOG ID",
}

// Request describes one report generation call.
type Request struct {
	Service string `json:"service" binding:"required"`
	Region  string `json:"region" binding:"required"`
	Date    string `json:"date" binding:"omitempty,datetime=2006-01-02"` // empty means today
	Type    string `json:"type" binding:"required"`
}

// Result carries the rendered report document and its date header.
type Result struct {
	Document []byte
	Date     string
}

// Service implements the report/query layer over the analytic store.
type Service struct {
	store     storage.ReportStore
	renderer  render.Renderer
	dataset   string
	publicURL string
	nowFn     func() time.Time
}

func NewService(store storage.ReportStore, renderer render.Renderer, dataset, publicURL string) *Service {
	if store == nil {
		panic("report: store must not be nil")
	}
	if renderer == nil {
		panic("report: renderer must not be nil")
	}
	return &Service{
		store:     store,
		renderer:  renderer,
		dataset:   dataset,
		publicURL: publicURL,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Generate runs the requested report and renders its document.
//
// Returns ErrInvalidType for unsupported types and storage.ErrNoData
// when the day's partition has no successful events; callers map both
// to distinct HTTP failures.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Type != TypeByLatencies {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, req.Type)
	}

	var day time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrInvalidType, req.Date)
		}
		day = parsed
	}

	table := v1.TableName(req.Service, req.Region)
	rows, err := s.store.LatenciesByEvent(ctx, s.dataset, table, day)
	if err != nil {
		return nil, err
	}

	headerDay := day
	if headerDay.IsZero() {
		headerDay = s.nowFn()
	}
	date := humanDate(headerDay)

	doc, err := s.renderer.Render(render.Document{
		Title:   fmt.Sprintf("API latencies: %s (%s)", req.Service, req.Region),
		Headers: reportHeaders,
		Data:    s.shapeRows(rows, req.Service, req.Region),
		Date:    date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	slog.Info("[Report] Generated latency report",
		"service", req.Service,
		"region", req.Region,
		"date", date,
		"rows", len(rows))
	return &Result{Document: doc, Date: date}, nil
}

// shapeRows formats the ranked latency rows into display cells, one
// row per event name. The max-lag log id links to the point lookup
// endpoint.
func (s *Service) shapeRows(rows []storage.LatencyRow, service, region string) [][]render.Cell {
	data := make([][]render.Cell, 0, len(rows))
	for _, row := range rows {
		data = append(data, []render.Cell{
			{Text: row.EventName},
			{Text: FormatMilliseconds(decimal.NewFromInt(row.MaxLatencyMs))},
			{Text: FormatMilliseconds(row.AvgLatencyMs)},
			{Text: FormatMilliseconds(decimal.NewFromInt(row.MinLatencyMs))},
			{Text: FormatTimestamp(row.Timestamp)},
			{Text: row.UserIP},
			{Text: row.LogID, Href: lookupURL(s.publicURL, row.LogID, service, region)},
		})
	}
	return data
}

// Lookup fetches one stored event by its unique identifier.
func (s *Service) Lookup(ctx context.Context, service, region, logID string) (*v1.LogEvent, error) {
	table := v1.TableName(service, region)
	return s.store.GetEventByID(ctx, s.dataset, table, logID)
}
