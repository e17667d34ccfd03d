// Package catalog keeps the wizard service's view of which competitions
// take registrations.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"go.uber.org/zap"
)

// Fetcher loads one competition from the portal API.
type Fetcher func(ctx context.Context, id uint) (*draft.Competition, error)

type Catalog struct {
	mu     sync.RWMutex
	offers map[uint]draft.Offer
	fetch  Fetcher
	logger *zap.Logger
}

func New(fetch Fetcher, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		offers: make(map[uint]draft.Offer),
		fetch:  fetch,
		logger: logger.With(zap.String("component", "catalog")),
	}
}

// Put records or replaces a competition.
func (c *Catalog) Put(comp *draft.Competition) {
	if comp.ID == 0 {
		return
	}
	c.mu.Lock()
	c.offers[comp.ID] = comp.Offer()
	c.mu.Unlock()
}

// Lookup is a draft.OfferLookup over the cached competitions.
func (c *Catalog) Lookup(id uint) (draft.Offer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.offers[id]
	return o, ok
}

// Ensure loads id from the portal API when it is not cached yet.
func (c *Catalog) Ensure(ctx context.Context, id uint) error {
	if id == 0 {
		return nil
	}
	if _, ok := c.Lookup(id); ok || c.fetch == nil {
		return nil
	}
	comp, err := c.fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch competition %d: %w", id, err)
	}
	comp.ID = id
	c.Put(comp)
	c.logger.Debug("competition fetched", zap.Uint("id", id))
	return nil
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.offers)
}
