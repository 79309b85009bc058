package ingestion

import (
	"github.com/gin-gonic/gin"
	"github.com/loglens-io/loglens/internal/alert"
	"github.com/loglens-io/loglens/internal/core/storage"
	"github.com/loglens-io/loglens/internal/mirror"
	"github.com/loglens-io/loglens/internal/provision"
	"github.com/loglens-io/loglens/internal/schema"
)

type Service struct {
	validator        *schema.Validator
	normalizer       *schema.Normalizer
	provisioner      *provision.Provisioner
	writer           storage.EventWriter
	mirror           mirror.Sink
	notifier         alert.Notifier
	dataset          string
	maxBodySizeBytes int
}

func NewService(
	val *schema.Validator,
	norm *schema.Normalizer,
	prov *provision.Provisioner,
	writer storage.EventWriter,
	sink mirror.Sink,
	notifier alert.Notifier,
	dataset string,
	maxBodySizeMB int,
) *Service {
	if val == nil {
		panic("ingestion: validator must not be nil")
	}
	if norm == nil {
		panic("ingestion: normalizer must not be nil")
	}
	if prov == nil {
		panic("ingestion: provisioner must not be nil")
	}
	if writer == nil {
		panic("ingestion: writer must not be nil")
	}
	if sink == nil {
		panic("ingestion: mirror sink must not be nil")
	}
	if notifier == nil {
		notifier = alert.NopNotifier{}
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		validator:        val,
		normalizer:       norm,
		provisioner:      prov,
		writer:           writer,
		mirror:           sink,
		notifier:         notifier,
		dataset:          dataset,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/logs", s.IngestHandler)
}
