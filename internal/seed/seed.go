// Package seed provisions demo data for local development: two clients, a
// small work-item taxonomy, a week of time entries, and the invoice counter.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureDemoData seeds a reproducible demo dataset. Records are keyed by
// name so re-running is a no-op.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acme, err := ensureClient(ctx, tx, node, clientdomain.Client{
			CompanyName: "Acme Corporation",
			ContactName: "Wile E. Coyote",
			Email:       "billing@acme.example",
			Address:     "1 Desert Road, Tumbleweed",
			VATNumber:   "ACME-001",
		})
		if err != nil {
			return err
		}
		solo, err := ensureClient(ctx, tx, node, clientdomain.Client{
			ContactName: "Jane Freelance",
			Email:       "jane@freelance.example",
		})
		if err != nil {
			return err
		}

		consulting, err := ensureCategory(ctx, tx, node, "Consulting")
		if err != nil {
			return err
		}
		development, err := ensureCategory(ctx, tx, node, "Development")
		if err != nil {
			return err
		}

		advisory, err := ensureTask(ctx, tx, node, consulting.ID, "Advisory Sessions")
		if err != nil {
			return err
		}
		backend, err := ensureTask(ctx, tx, node, development.ID, "Backend")
		if err != nil {
			return err
		}

		senior, err := ensureDetail(ctx, tx, node, advisory.ID, "Senior Consultant", rate("150.00"))
		if err != nil {
			return err
		}
		engineer, err := ensureDetail(ctx, tx, node, backend.ID, "Engineering", rate("95.00"))
		if err != nil {
			return err
		}
		// Internal work carries no rate on purpose; it renders as N/A.
		internal, err := ensureDetail(ctx, tx, node, backend.ID, "Internal Tooling", decimal.NullDecimal{})
		if err != nil {
			return err
		}

		entries := []timeentrydomain.TimeEntry{
			demoEntry(acme.ID, consulting.ID, advisory.ID, senior.ID, -6, 10, 2*3600, "Quarterly planning session"),
			demoEntry(acme.ID, development.ID, backend.ID, engineer.ID, -5, 9, 5*3600+1800, "Invoice pipeline work"),
			demoEntry(acme.ID, development.ID, backend.ID, engineer.ID, -4, 13, 3*3600, "Code review and fixes"),
			demoEntry(acme.ID, development.ID, backend.ID, internal.ID, -3, 15, 3600, "CI maintenance"),
			demoEntry(solo.ID, consulting.ID, advisory.ID, senior.ID, -2, 11, 90*60, "Architecture call"),
		}
		for _, entry := range entries {
			if err := ensureTimeEntry(ctx, tx, node, entry); err != nil {
				return err
			}
		}

		return ensureInvoiceCounter(ctx, tx)
	})
}

func rate(value string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(value), Valid: true}
}

func demoEntry(clientID, categoryID, taskID, detailID snowflake.ID, daysAgo, hourOfDay int, durationSeconds int64, notes string) timeentrydomain.TimeEntry {
	day := time.Now().UTC().AddDate(0, 0, daysAgo)
	start := time.Date(day.Year(), day.Month(), day.Day(), hourOfDay, 0, 0, 0, time.UTC)
	return timeentrydomain.TimeEntry{
		ClientID: clientID,
		Ref: workitemdomain.Ref{
			CategoryID: categoryID,
			TaskID:     taskID,
			DetailID:   detailID,
		},
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationSeconds) * time.Second),
		Duration:  durationSeconds,
		Notes:     notes,
	}
}

func ensureClient(ctx context.Context, tx *gorm.DB, node *snowflake.Node, seed clientdomain.Client) (clientdomain.Client, error) {
	var existing clientdomain.Client
	err := tx.WithContext(ctx).
		Where("company_name = ? AND contact_name = ?", seed.CompanyName, seed.ContactName).
		First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	now := time.Now().UTC()
	seed.ID = node.Generate()
	seed.CreatedAt = now
	seed.UpdatedAt = now
	if err := tx.WithContext(ctx).Create(&seed).Error; err != nil {
		return seed, err
	}
	return seed, nil
}

func ensureCategory(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (workitemdomain.Category, error) {
	var existing workitemdomain.Category
	err := tx.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	now := time.Now().UTC()
	existing = workitemdomain.Category{ID: node.Generate(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(&existing).Error; err != nil {
		return existing, err
	}
	return existing, nil
}

func ensureTask(ctx context.Context, tx *gorm.DB, node *snowflake.Node, categoryID snowflake.ID, name string) (workitemdomain.Task, error) {
	var existing workitemdomain.Task
	err := tx.WithContext(ctx).Where("category_id = ? AND name = ?", categoryID, name).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	now := time.Now().UTC()
	existing = workitemdomain.Task{ID: node.Generate(), CategoryID: categoryID, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(&existing).Error; err != nil {
		return existing, err
	}
	return existing, nil
}

func ensureDetail(ctx context.Context, tx *gorm.DB, node *snowflake.Node, taskID snowflake.ID, name string, hourlyRate decimal.NullDecimal) (workitemdomain.Detail, error) {
	var existing workitemdomain.Detail
	err := tx.WithContext(ctx).Where("task_id = ? AND name = ?", taskID, name).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	now := time.Now().UTC()
	existing = workitemdomain.Detail{
		ID:         node.Generate(),
		TaskID:     taskID,
		Name:       name,
		HourlyRate: hourlyRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&existing).Error; err != nil {
		return existing, err
	}
	return existing, nil
}

func ensureTimeEntry(ctx context.Context, tx *gorm.DB, node *snowflake.Node, entry timeentrydomain.TimeEntry) error {
	var existing timeentrydomain.TimeEntry
	err := tx.WithContext(ctx).
		Where("client_id = ? AND start_time = ?", entry.ClientID, entry.StartTime).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	entry.ID = node.Generate()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return tx.WithContext(ctx).Create(&entry).Error
}

func ensureInvoiceCounter(ctx context.Context, tx *gorm.DB) error {
	var existing sequencedomain.InvoiceCounter
	err := tx.WithContext(ctx).First(&existing, "id = ?", 1).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.WithContext(ctx).Create(&sequencedomain.InvoiceCounter{
		ID:            1,
		CurrentNumber: 0,
		Year:          time.Now().UTC().Year(),
		UpdatedAt:     time.Now().UTC(),
	}).Error
}
