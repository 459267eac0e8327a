package service

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// decorationConcurrency bounds the lookup fan-out per batch.
const decorationConcurrency = 8

type Loader struct {
	log      *zap.Logger
	repo     timeentrydomain.Repository
	clients  clientdomain.Repository
	resolver workitemdomain.Resolver
}

type LoaderParam struct {
	fx.In

	Log      *zap.Logger
	Repo     timeentrydomain.Repository
	Clients  clientdomain.Repository
	Resolver workitemdomain.Resolver
}

func NewLoader(p LoaderParam) timeentrydomain.Loader {
	return &Loader{
		log:      p.Log.Named("timeentry.loader"),
		repo:     p.Repo,
		clients:  p.Clients,
		resolver: p.Resolver,
	}
}

// Load runs the primary entry query, then decorates every entry with its
// work-item resolution and client display name. Decoration lookups run
// concurrently and degrade per-field; only the primary query or a canceled
// context fails the whole load.
func (l *Loader) Load(ctx context.Context, filter timeentrydomain.Filter) ([]timeentrydomain.DecoratedEntry, error) {
	entries, err := l.repo.ListEntries(ctx, filter)
	if err != nil {
		if errors.Is(err, timeentrydomain.ErrCapabilityMissing) {
			return nil, err
		}
		return nil, &timeentrydomain.LoadError{Filter: filter, Err: err}
	}
	if len(entries) == 0 {
		return []timeentrydomain.DecoratedEntry{}, nil
	}

	batch := l.resolver.NewBatch()
	resolutions := make([]workitemdomain.Resolution, len(entries))

	clientNames := make(map[snowflake.ID]string)
	for _, entry := range entries {
		clientNames[entry.ClientID] = ""
	}
	var nameMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decorationConcurrency)

	for id := range clientNames {
		g.Go(func() error {
			name := l.clientName(gctx, id)
			nameMu.Lock()
			clientNames[id] = name
			nameMu.Unlock()
			return gctx.Err()
		})
	}
	for i, entry := range entries {
		g.Go(func() error {
			resolutions[i] = batch.Resolve(gctx, entry.Ref)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &timeentrydomain.LoadError{Filter: filter, Err: err}
	}

	decorated := make([]timeentrydomain.DecoratedEntry, len(entries))
	for i, entry := range entries {
		l.warnOnDurationDrift(entry)
		decorated[i] = timeentrydomain.DecoratedEntry{
			TimeEntry:  entry,
			Resolution: resolutions[i],
			ClientName: clientNames[entry.ClientID],
		}
	}
	return decorated, nil
}

func (l *Loader) clientName(ctx context.Context, id snowflake.ID) string {
	if id == 0 {
		return workitemdomain.NameNotAvailable
	}
	client, err := l.clients.FindByID(ctx, id)
	if err != nil {
		l.log.Warn("client lookup failed", zap.String("client_id", id.String()), zap.Error(err))
		return timeentrydomain.ClientNameFetchFailed
	}
	if client == nil {
		return workitemdomain.NameNotAvailable
	}
	return client.DisplayName()
}

// The stored duration is the billed value. Manual edits can leave it out of
// step with the timestamps; surface that for operators without rewriting it.
func (l *Loader) warnOnDurationDrift(entry timeentrydomain.TimeEntry) {
	wall := int64(entry.EndTime.Sub(entry.StartTime).Seconds())
	drift := entry.Duration - wall
	if drift < -1 || drift > 1 {
		l.log.Warn("stored duration disagrees with timestamps",
			zap.String("entry_id", entry.ID.String()),
			zap.Int64("stored_seconds", entry.Duration),
			zap.Int64("wall_seconds", wall),
		)
	}
}
