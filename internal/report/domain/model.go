// Package domain defines derived timesheet report rows and exports.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/shopspring/decimal"
)

// ReportRow is one decorated time entry with its computed price. Price is
// null when the detail carries no rate or the entry has no duration.
type ReportRow struct {
	EntryID         snowflake.ID        `json:"entry_id"`
	ClientName      string              `json:"client_name"`
	CategoryName    string              `json:"category_name"`
	TaskName        string              `json:"task_name"`
	DetailName      string              `json:"detail_name"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         time.Time           `json:"end_time"`
	DurationSeconds int64               `json:"duration_seconds"`
	HourlyRate      decimal.NullDecimal `json:"hourly_rate"`
	Price           decimal.NullDecimal `json:"price"`
}

// Report carries the rows plus totals: duration over every row, price over
// priced rows only.
type Report struct {
	Filter               timeentrydomain.Filter `json:"filter"`
	Rows                 []ReportRow            `json:"rows"`
	TotalDurationSeconds int64                  `json:"total_duration_seconds"`
	TotalPrice           decimal.Decimal        `json:"total_price"`
}

// ExportResult is a rendered delimited-text report.
type ExportResult struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	Checksum string `json:"checksum"`
	Count    int    `json:"count"`
}

type Service interface {
	BuildReport(ctx context.Context, filter timeentrydomain.Filter) (*Report, error)
	ExportCSV(ctx context.Context, report *Report) (*ExportResult, error)
}

// FormatDuration renders seconds as zero-padded HH:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		return "00:00:00"
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
