// Package syscache memoizes star system geocoding answers in the
// database. Entries are written through on resolver hits and never
// expire.
package syscache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/edtools/wingbot/internal/database"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/pkg/edsm"
)

type Resolver interface {
	SystemPosition(ctx context.Context, name string) (*edsm.SystemInfo, error)
}

type SystemCache struct {
	dbm      *database.DatabaseManager
	resolver Resolver
	logger   *slog.Logger
}

func New(dbm *database.DatabaseManager, resolver Resolver) *SystemCache {
	return &SystemCache{
		dbm:      dbm,
		resolver: resolver,
		logger:   slog.With("logger", "syscache"),
	}
}

// Get returns the cached position for a system, consulting the resolver
// on a miss. Lookup failures degrade to nil, the caller treats that as
// "position unknown".
func (c *SystemCache) Get(ctx context.Context, name string) *model.SystemPosition {
	if name == "" {
		return nil
	}

	if rec := c.Peek(name); rec != nil {
		return rec
	}

	if c.resolver == nil {
		return nil
	}

	info, err := c.resolver.SystemPosition(ctx, name)

	if err != nil {
		c.logger.Warn("lookup failed", slog.String("system", name), slog.Any("error", err))

		return nil
	}

	if info == nil || info.Coords == nil {
		return nil
	}

	rec := c.Put(info)

	return rec
}

// Peek is a cache-only lookup, case-insensitive on the system name.
func (c *SystemCache) Peek(name string) *model.SystemPosition {
	return c.dbm.PositionQuery().Name(name).One()
}

// Put upserts an entry keyed by the lowercased system name.
func (c *SystemCache) Put(info *edsm.SystemInfo) *model.SystemPosition {
	if info == nil || info.Coords == nil {
		return nil
	}

	rec := &model.SystemPosition{
		Name:         strings.ToLower(info.Name),
		X:            info.Coords.X,
		Y:            info.Coords.Y,
		Z:            info.Coords.Z,
		CoordsLocked: info.CoordsLocked,
		CachedAt:     time.Now(),
	}

	if err := c.dbm.ForceSave(rec); err != nil {
		return nil
	}

	return rec
}

func (c *SystemCache) Stats() *model.CacheStats {
	st := &model.CacheStats{TotalEntries: c.dbm.PositionQuery().Count()}

	if oldest := c.dbm.PositionQuery().Order("cached_at ASC").Limit(1).One(); oldest != nil {
		st.OldestEntry = &oldest.CachedAt
	}

	if newest := c.dbm.PositionQuery().Order("cached_at DESC").Limit(1).One(); newest != nil {
		st.NewestEntry = &newest.CachedAt
	}

	return st
}

func (c *SystemCache) Clear() error {
	return c.dbm.ClearPositions()
}
