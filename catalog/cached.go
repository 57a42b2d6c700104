package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/media"
)

type CollectionStore interface {
	Load(ctx context.Context, link media.Link) (*media.Collection, error)
	Save(ctx context.Context, link media.Link, c *media.Collection) error
}

// Cached serves lookups from a persistent store and falls back to the wrapped service on misses.
// Store failures only degrade to uncached lookups.
type Cached struct {
	inner Service
	store CollectionStore
}

func NewCached(inner Service, store CollectionStore) *Cached {
	return &Cached{inner: inner, store: store}
}

func (c *Cached) Lookup(ctx context.Context, logger zerolog.Logger, link media.Link) (*media.Collection, error) {
	logger = logger.With().Str("link", link.String()).Logger()

	stored, err := c.store.Load(ctx, link)
	switch {
	case nil != err:
		logger.Warn().Err(err).Msg("Failed to load stored collection")
	case nil != stored:
		if err := stored.Validate(); nil == err {
			logger.Debug().Msg("Using stored collection")
			return stored, nil
		}
		logger.Warn().Msg("Ignoring invalid stored collection")
	}

	out, err := c.inner.Lookup(ctx, logger, link)
	if nil != err {
		return nil, fmt.Errorf("failed to look up link: %w", err)
	}

	if err := c.store.Save(ctx, link, out); nil != err {
		logger.Warn().Err(err).Msg("Failed to store collection")
	}

	return out, nil
}
