package service

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Resolver turns a composite work-item reference into display names and the
// detail's hourly rate. Dangling references and per-lookup failures degrade
// to sentinel display values; Resolve never aborts a batch.
type Resolver struct {
	log  *zap.Logger
	repo workitemdomain.Repository

	mu    sync.Mutex
	cache map[snowflake.ID]workitemdomain.Resolution
}

type ResolverParam struct {
	fx.In

	Log  *zap.Logger
	Repo workitemdomain.Repository
}

func NewResolver(p ResolverParam) workitemdomain.Resolver {
	return &Resolver{
		log:  p.Log.Named("workitem.resolver"),
		repo: p.Repo,
	}
}

// NewBatch returns a resolver whose results are cached by detail id for the
// lifetime of one batch, so a hundred entries against the same detail cost
// one round of lookups.
func (r *Resolver) NewBatch() workitemdomain.Resolver {
	return &Resolver{
		log:   r.log,
		repo:  r.repo,
		cache: make(map[snowflake.ID]workitemdomain.Resolution),
	}
}

func (r *Resolver) Resolve(ctx context.Context, ref workitemdomain.Ref) workitemdomain.Resolution {
	if r.cache != nil {
		r.mu.Lock()
		cached, ok := r.cache[ref.DetailID]
		r.mu.Unlock()
		if ok {
			return cached
		}
	}

	res, cacheable := r.resolve(ctx, ref)

	if r.cache != nil && cacheable {
		r.mu.Lock()
		r.cache[ref.DetailID] = res
		r.mu.Unlock()
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, ref workitemdomain.Ref) (workitemdomain.Resolution, bool) {
	res := workitemdomain.Resolution{
		CategoryName: workitemdomain.NameNotAvailable,
		TaskName:     workitemdomain.NameNotAvailable,
		DetailName:   workitemdomain.NameNotAvailable,
		HourlyRate:   decimal.NullDecimal{},
	}
	cacheable := true

	detail, err := r.repo.FindDetail(ctx, ref.DetailID)
	switch {
	case err != nil:
		r.log.Warn("detail lookup failed", zap.String("detail_id", ref.DetailID.String()), zap.Error(err))
		res.DetailName = workitemdomain.ErrFetchingDetail
		return res, false
	case detail == nil:
		res.DetailName = workitemdomain.DetailNotFound
		return res, cacheable
	default:
		res.DetailName = nameOr(detail.Name, "Unnamed Detail")
		res.HourlyRate = detail.HourlyRate
	}

	task, err := r.repo.FindTask(ctx, ref.TaskID)
	switch {
	case err != nil:
		r.log.Warn("task lookup failed", zap.String("task_id", ref.TaskID.String()), zap.Error(err))
		res.TaskName = workitemdomain.ErrFetchingTask
		cacheable = false
	case task != nil:
		res.TaskName = nameOr(task.Name, "Unnamed Task")
	}

	category, err := r.repo.FindCategory(ctx, ref.CategoryID)
	switch {
	case err != nil:
		r.log.Warn("category lookup failed", zap.String("category_id", ref.CategoryID.String()), zap.Error(err))
		res.CategoryName = workitemdomain.ErrFetchingCategory
		cacheable = false
	case category != nil:
		res.CategoryName = nameOr(category.Name, "Unnamed Category")
	}

	return res, cacheable
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
