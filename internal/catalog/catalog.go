// Package catalog is the read-only registry of bookable services and their
// add-ons. Entries are normalised once at ingestion and never mutated; a
// reload swaps the whole registry.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"go.uber.org/zap"
)

var ErrCatalogUnavailable = errors.New("service catalog unavailable")

type registry struct {
	byID  map[string]models.Service
	order []string
}

type Catalog struct {
	source Source
	logger *zap.Logger

	mu  sync.RWMutex
	reg *registry
}

func New(source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, logger: logger}
}

// Preloaded builds a catalog from already normalised services.
func Preloaded(services []models.Service) *Catalog {
	c := New(nil, nil)
	c.reg = buildRegistry(services)
	return c
}

// Load ingests the catalog the first time it is called; later calls are
// no-ops once a registry exists.
func (c *Catalog) Load(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	return c.Reload(ctx)
}

// Reload fetches and normalises the catalog and replaces the registry. On
// failure the previous registry stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("%w: no source configured", ErrCatalogUnavailable)
	}
	raws, err := c.source.FetchServices(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	services := make([]models.Service, 0, len(raws))
	for _, raw := range raws {
		svc, err := Normalize(raw)
		if err != nil {
			c.logger.Warn("skipping catalog entry", zap.Error(err))
			continue
		}
		services = append(services, svc)
	}

	reg := buildRegistry(services)
	c.mu.Lock()
	c.reg = reg
	c.mu.Unlock()

	c.logger.Info("catalog loaded", zap.Int("services", len(reg.order)), zap.Int("skipped", len(raws)-len(services)))
	return nil
}

func buildRegistry(services []models.Service) *registry {
	reg := &registry{byID: make(map[string]models.Service, len(services))}
	owner := make(map[string]string)
	for _, svc := range services {
		if _, dup := reg.byID[svc.ID]; dup {
			continue
		}
		svc = svc.Clone()
		// an add-on id may only ever name one service
		kept := svc.AddOns[:0]
		for _, a := range svc.AddOns {
			if prev, taken := owner[a.ID]; taken && prev != svc.ID {
				continue
			}
			owner[a.ID] = svc.ID
			kept = append(kept, a)
		}
		svc.AddOns = kept
		reg.byID[svc.ID] = svc
		reg.order = append(reg.order, svc.ID)
	}
	return reg
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg != nil
}

// GetByID returns a copy of the service, or false when it is absent.
func (c *Catalog) GetByID(id string) (models.Service, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.reg == nil {
		return models.Service{}, false
	}
	svc, ok := c.reg.byID[id]
	if !ok {
		return models.Service{}, false
	}
	return svc.Clone(), true
}

// AddOnsFor lists the add-ons of a service in catalog order. Unknown
// services yield an empty list.
func (c *Catalog) AddOnsFor(serviceID string) []models.AddOn {
	svc, ok := c.GetByID(serviceID)
	if !ok {
		return []models.AddOn{}
	}
	return svc.AddOns
}

func (c *Catalog) List() []models.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.reg == nil {
		return []models.Service{}
	}
	out := make([]models.Service, 0, len(c.reg.order))
	for _, id := range c.reg.order {
		out = append(out, c.reg.byID[id].Clone())
	}
	return out
}
