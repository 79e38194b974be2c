package artwork

import (
	"context"
	"fmt"
	"log/slog"

	"artify/internal/entity"
)

type API interface {
	GetArtwork(ctx context.Context, id string) (entity.Artwork, error)
	CountByOwner(ctx context.Context, email string) (int, error)
}

// Detail is one artwork with how many artworks its owner has submitted.
type Detail struct {
	Artwork    entity.Artwork
	OwnerCount int
	// CountErr is set when the owner count could not be fetched. The
	// artwork is still valid.
	CountErr error
}

type Loader struct {
	api    API
	logger *slog.Logger
}

func NewLoader(api API, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{api: api, logger: logger.With("component", "artwork")}
}

// Load fetches the artwork, then its owner's artwork count.
func (l *Loader) Load(ctx context.Context, id string) (Detail, error) {
	a, err := l.api.GetArtwork(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("load artwork %s: %w", id, err)
	}

	d := Detail{Artwork: a}
	if a.OwnerEmail == "" {
		return d, nil
	}
	n, err := l.api.CountByOwner(ctx, a.OwnerEmail)
	if err != nil {
		l.logger.Warn("owner count failed", "artwork_id", id, "error", err)
		d.CountErr = err
		return d, nil
	}
	d.OwnerCount = n
	return d, nil
}
