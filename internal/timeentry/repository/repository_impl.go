package repository

import (
	"context"
	"strings"

	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) timeentrydomain.Repository {
	return &repository{db: db}
}

func (r *repository) ListEntries(ctx context.Context, filter timeentrydomain.Filter) ([]timeentrydomain.TimeEntry, error) {
	query := r.scoped(ctx, filter)

	order := "start_time ASC, id ASC"
	if filter.Order == timeentrydomain.SortDescending {
		order = "start_time DESC, id DESC"
	}

	var entries []timeentrydomain.TimeEntry
	if err := query.Order(order).Find(&entries).Error; err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

func (r *repository) CountEntries(ctx context.Context, filter timeentrydomain.Filter) (int64, error) {
	var count int64
	if err := r.scoped(ctx, filter).Count(&count).Error; err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (r *repository) scoped(ctx context.Context, filter timeentrydomain.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&timeentrydomain.TimeEntry{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.StartDate != nil {
		query = query.Where("start_time >= ?", timeentrydomain.DayStart(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("start_time <= ?", timeentrydomain.DayEnd(*filter.EndDate))
	}
	return query
}

// classify maps schema-level failures (table or column missing, i.e. the
// store was never provisioned for this query) to ErrCapabilityMissing so
// callers can surface actionable guidance. Everything else stays as-is.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "sqlstate 42p01"), // undefined_table
		strings.Contains(msg, "sqlstate 42703"): // undefined_column
		return timeentrydomain.ErrCapabilityMissing
	}
	return err
}
