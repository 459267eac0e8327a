package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"

	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	reportdomain "github.com/cogentahq/timebill/internal/report/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	displayDateLayout = "Jan 2, 2006"
	displayTimeLayout = "15:04:05"
	fileDateLayout    = "20060102"
)

type Service struct {
	log     *zap.Logger
	loader  timeentrydomain.Loader
	clients clientdomain.Repository
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Loader  timeentrydomain.Loader
	Clients clientdomain.Repository
}

func NewService(param ServiceParam) reportdomain.Service {
	return &Service{
		log:     param.Log.Named("report.service"),
		loader:  param.Loader,
		clients: param.Clients,
	}
}

// BuildReport loads matching entries newest first and computes per-row prices
// and the report totals. Rows without a usable rate still count toward the
// duration total but never toward the price total.
func (s *Service) BuildReport(ctx context.Context, filter timeentrydomain.Filter) (*reportdomain.Report, error) {
	if filter.Order == "" {
		filter.Order = timeentrydomain.SortDescending
	}

	entries, err := s.loader.Load(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &reportdomain.Report{
		Filter:     filter,
		Rows:       make([]reportdomain.ReportRow, 0, len(entries)),
		TotalPrice: decimal.Zero,
	}

	for _, entry := range entries {
		row := reportdomain.ReportRow{
			EntryID:         entry.ID,
			ClientName:      entry.ClientName,
			CategoryName:    entry.Resolution.CategoryName,
			TaskName:        entry.Resolution.TaskName,
			DetailName:      entry.Resolution.DetailName,
			StartTime:       entry.StartTime,
			EndTime:         entry.EndTime,
			DurationSeconds: entry.Duration,
			HourlyRate:      entry.Resolution.HourlyRate,
		}
		if entry.Resolution.HourlyRate.Valid && entry.Duration > 0 {
			hours := decimal.NewFromInt(entry.Duration).Div(decimal.NewFromInt(3600))
			price := hours.Mul(entry.Resolution.HourlyRate.Decimal)
			row.Price = decimal.NullDecimal{Decimal: price, Valid: true}
			report.TotalPrice = report.TotalPrice.Add(price)
		}
		report.TotalDurationSeconds += entry.Duration
		report.Rows = append(report.Rows, row)
	}

	s.log.Debug("report built",
		zap.String("filter", filter.String()),
		zap.Int("rows", len(report.Rows)),
		zap.String("total_price", report.TotalPrice.StringFixed(2)))

	return report, nil
}

// ExportCSV renders the report as CSV with a trailing totals row, and names
// the file after the client and the date range of the filter.
func (s *Service) ExportCSV(ctx context.Context, report *reportdomain.Report) (*reportdomain.ExportResult, error) {
	data, err := s.formatCSV(report)
	if err != nil {
		return nil, err
	}

	filename, err := s.filename(ctx, report.Filter)
	if err != nil {
		return nil, err
	}

	return &reportdomain.ExportResult{
		Data:     data,
		Filename: filename,
		Checksum: calculateChecksum(data),
		Count:    len(report.Rows),
	}, nil
}

func (s *Service) formatCSV(report *reportdomain.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Date",
		"Client",
		"Category",
		"Task",
		"Detail",
		"Duration (HH:MM:SS)",
		"Start Time",
		"End Time",
		"Rate",
		"Price",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range report.Rows {
		record := []string{
			row.StartTime.Format(displayDateLayout),
			row.ClientName,
			row.CategoryName,
			row.TaskName,
			row.DetailName,
			reportdomain.FormatDuration(row.DurationSeconds),
			row.StartTime.Format(displayTimeLayout),
			row.EndTime.Format(displayTimeLayout),
			formatNullDecimal(row.HourlyRate),
			formatNullDecimal(row.Price),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	// Blank separator row before the totals row.
	if err := w.Write([]string{""}); err != nil {
		return nil, err
	}
	totals := []string{
		"", "", "", "",
		"TOTALS:",
		reportdomain.FormatDuration(report.TotalDurationSeconds),
		"", "", "",
		report.TotalPrice.StringFixed(2),
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *Service) filename(ctx context.Context, filter timeentrydomain.Filter) (string, error) {
	clientPart := "AllClients"
	if filter.ClientID != nil {
		client, err := s.clients.FindByID(ctx, *filter.ClientID)
		if err != nil {
			return "", fmt.Errorf("find client %s: %w", filter.ClientID.String(), err)
		}
		name := clientdomain.UndefinedDisplayName
		if client != nil {
			name = client.DisplayName()
		}
		clientPart = slug.Make(name)
	}

	var rangePart string
	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		rangePart = fmt.Sprintf("%s-%s",
			filter.StartDate.Format(fileDateLayout),
			filter.EndDate.Format(fileDateLayout))
	case filter.StartDate != nil:
		rangePart = "from-" + filter.StartDate.Format(fileDateLayout)
	case filter.EndDate != nil:
		rangePart = "until-" + filter.EndDate.Format(fileDateLayout)
	default:
		rangePart = "all-dates"
	}

	return fmt.Sprintf("timesheet_report_%s_%s.csv", clientPart, rangePart), nil
}

func formatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
