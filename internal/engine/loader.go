package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// LoadConfig selects where the range catalog comes from.
type LoadConfig struct {
	Mode      string // config.CatalogModePresets, CatalogModeLocal or CatalogModeWeb
	LocalPath string // path to a .ics file
	WebURL    string
	WebUser   string // HTTP Basic Auth
	WebPass   string
}

// CatalogLoader builds range catalogs from the configured source.
type CatalogLoader struct {
	Clock   Clock
	Fetcher CatalogFetcher

	// Translate localizes the preset labels. Nil keeps translation keys.
	Translate func(key string) string

	// Location resolves floating times in imported feeds. Nil means time.Local.
	Location *time.Location
}

// Load returns the catalog for cfg. Presets never fail; file and web sources
// fail when unreachable or unparsable.
func (l *CatalogLoader) Load(ctx context.Context, cfg LoadConfig) (*Catalog, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompCatalog,
		config.LogKeyMode, cfg.Mode,
	)

	if cfg.Mode == config.CatalogModePresets || cfg.Mode == "" {
		return StandardRanges(Today(l.Clock), l.Translate), nil
	}

	reader, err := l.open(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogLoad, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	catalog, err := DecodeCatalog(reader, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogLoad, err)
	}

	log.InfoContext(ctx, config.MsgCatalogLoaded,
		config.LogKeyCount, catalog.Len(),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return catalog, nil
}

func (l *CatalogLoader) open(ctx context.Context, cfg LoadConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.CatalogModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.CatalogModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if l.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return l.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
