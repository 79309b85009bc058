package report

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/loglens-io/loglens/internal/core/errors"
	"github.com/loglens-io/loglens/internal/core/storage"
)

// RegisterRoutes registers the report API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/reports", s.GenerateHandler)
	r.GET("/v1/logs/entry", s.LookupHandler)
}

// GenerateHandler handles POST /v1/reports. The rendered document is
// returned base64-encoded alongside its human-readable date.
func (s *Service) GenerateHandler(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid report request",
			Details:   err.Error(),
		})
		return
	}

	result, err := s.Generate(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpValidationError,
				Message:   "Invalid type",
				Details:   err.Error(),
			})
		case errors.Is(err, storage.ErrNoData):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNoDataError,
				Message:   "No data found",
			})
		default:
			slog.Error("Failed to generate report",
				"error", err, "service", req.Service, "region", req.Region)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpReportQueryError,
				Message:   "Failed to generate report",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": base64.StdEncoding.EncodeToString(result.Document),
		"date": result.Date,
	})
}

// LookupHandler handles GET /v1/logs/entry?service&region&log_id.
func (s *Service) LookupHandler(c *gin.Context) {
	var query struct {
		Service string `form:"service" binding:"required"`
		Region  string `form:"region" binding:"required"`
		LogID   string `form:"log_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	evt, err := s.Lookup(c.Request.Context(), query.Service, query.Region, query.LogID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Log entry not found",
			})
			return
		}

		slog.Error("Failed to fetch log entry",
			"error", err, "log_id", query.LogID, "service", query.Service)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to fetch log entry",
		})
		return
	}

	c.JSON(http.StatusOK, evt)
}
