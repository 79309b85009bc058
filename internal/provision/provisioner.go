package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loglens-io/loglens/internal/core/storage"
	"golang.org/x/sync/singleflight"
)

// ProvisioningError marks a failure to establish the dataset or table
// an event needs. Ingestion treats it as fatal for the request.
type ProvisioningError struct {
	Resource string
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision %s: %v", e.Resource, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// Provisioner lazily creates datasets and tables on first use. A
// concurrent-safe cache short-circuits the common path, and in-flight
// creations for the same resource are collapsed so a burst of first
// events for a new service issues a single DDL statement.
type Provisioner struct {
	store storage.ProvisionStore
	cache Cache
	group singleflight.Group
}

func NewProvisioner(store storage.ProvisionStore, cache Cache) *Provisioner {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Provisioner{store: store, cache: cache}
}

// EnsureDataset creates the dataset if this process has not seen it
// yet. An already-existing dataset is success.
func (p *Provisioner) EnsureDataset(ctx context.Context, dataset, region string) error {
	return p.ensure(ctx, dataset, func() error {
		return p.store.CreateDataset(ctx, dataset, region)
	})
}

// EnsureTable creates the (service, region) table if this process has
// not seen it yet. An already-existing table is success.
func (p *Provisioner) EnsureTable(ctx context.Context, dataset, table, region string) error {
	key := dataset + "/" + table
	return p.ensure(ctx, key, func() error {
		return p.store.CreateTable(ctx, dataset, table, region)
	})
}

func (p *Provisioner) ensure(ctx context.Context, key string, create func() error) error {
	if p.cache.Exists(key) {
		return nil
	}

	_, err, shared := p.group.Do(key, func() (any, error) {
		// Re-check under the group: a concurrent caller may have
		// finished provisioning between the cache miss and here.
		if p.cache.Exists(key) {
			return nil, nil
		}

		if err := create(); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				slog.Info("[Provision] Resource already exists", "resource", key)
				p.cache.MarkExists(key)
				return nil, nil
			}
			return nil, err
		}

		p.cache.MarkExists(key)
		return nil, nil
	})
	if err != nil {
		return &ProvisioningError{Resource: key, Err: err}
	}
	if shared {
		slog.Debug("[Provision] Collapsed concurrent provisioning", "resource", key)
	}
	return nil
}
