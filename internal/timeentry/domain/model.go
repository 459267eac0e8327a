package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
)

// TimeEntry is one tracked block of work. Duration is stored independently
// of the timestamps and is the value billing trusts; a disagreement with
// EndTime-StartTime is logged, never silently recomputed.
type TimeEntry struct {
	ID        snowflake.ID       `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID       `gorm:"not null;index" json:"client_id"`
	Ref       workitemdomain.Ref `gorm:"embedded" json:"work_item"`
	StartTime time.Time          `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time          `gorm:"not null" json:"end_time"`
	Duration  int64              `gorm:"not null" json:"duration_seconds"`
	Notes     string             `gorm:"type:text" json:"notes"`
	CreatedAt time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time          `gorm:"not null" json:"updated_at"`
}

func (TimeEntry) TableName() string { return "time_entries" }

// Hours returns the stored duration in decimal hours.
func (e TimeEntry) Hours() float64 { return float64(e.Duration) / 3600 }

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Filter narrows a load. Nil fields are unbounded; dates are calendar days,
// inclusive on both sides, compared against StartTime.
type Filter struct {
	ClientID  *snowflake.ID `json:"client_id,omitempty"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Order     SortDirection `json:"order,omitempty"`
}

// DayStart normalizes a filter date to 00:00:00 of its calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd normalizes a filter date to the last instant of its calendar day.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// ClientNameFetchFailed is the per-entry sentinel when the client record
// lookup fails; loading continues with the rest of the batch.
const ClientNameFetchFailed = "Error fetching client"

// DecoratedEntry is a time entry augmented with the resolved work-item names,
// hourly rate, and client display name.
type DecoratedEntry struct {
	TimeEntry
	Resolution workitemdomain.Resolution `json:"resolution"`
	ClientName string                    `json:"client_name"`
}

// ErrCapabilityMissing signals that the store cannot execute the requested
// filter/ordering combination (schema or index not provisioned). Callers can
// show actionable guidance instead of a generic failure.
var ErrCapabilityMissing = errors.New("store capability missing for requested query")

// LoadError is a whole-operation load failure carrying the triggering filter.
type LoadError struct {
	Filter Filter
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load time entries (filter %s): %v", e.Filter, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (f Filter) String() string {
	client := "all-clients"
	if f.ClientID != nil {
		client = f.ClientID.String()
	}
	from, until := "-", "-"
	if f.StartDate != nil {
		from = f.StartDate.Format("2006-01-02")
	}
	if f.EndDate != nil {
		until = f.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("client=%s from=%s until=%s", client, from, until)
}

// Loader fetches entries matching a filter and decorates each with resolver
// output and a client display name.
type Loader interface {
	Load(ctx context.Context, filter Filter) ([]DecoratedEntry, error)
}

// Repository runs the primary entry query. Its error is a whole-operation
// failure; decoration degradation happens above it.
type Repository interface {
	ListEntries(ctx context.Context, filter Filter) ([]TimeEntry, error)
	CountEntries(ctx context.Context, filter Filter) (int64, error)
}
