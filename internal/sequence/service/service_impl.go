package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cogentahq/timebill/internal/clock"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	counterRowID = 1
	maxAttempts  = 5
)

// errStale signals that another caller committed between our read and write;
// the attempt rolls back and the loop re-reads.
var errStale = errors.New("counter row changed underneath transaction")

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) sequencedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sequence.service"),
		clock: p.Clock,
	}
}

// IssueNumber runs a read-increment-write transaction on the counter row.
// The row is locked for the duration of the transaction where the store
// supports it; an optimistic guard on the update catches the rest, so two
// concurrent callers can never commit the same sequence value.
func (s *Service) IssueNumber(ctx context.Context, year int) (string, error) {
	var issued int64

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var counter sequencedomain.InvoiceCounter
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", counterRowID).
				First(&counter).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				issued = 1
				return tx.Create(&sequencedomain.InvoiceCounter{
					ID:            counterRowID,
					CurrentNumber: issued,
					Year:          year,
					UpdatedAt:     s.clock.Now(ctx),
				}).Error
			}
			if err != nil {
				return err
			}

			if counter.Year == year {
				issued = counter.CurrentNumber + 1
			} else {
				issued = 1
			}

			res := tx.Model(&sequencedomain.InvoiceCounter{}).
				Where("id = ? AND current_number = ? AND year = ?", counterRowID, counter.CurrentNumber, counter.Year).
				Updates(map[string]any{
					"current_number": issued,
					"year":           year,
					"updated_at":     s.clock.Now(ctx),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStale
			}
			return nil
		})
		if err == nil {
			return fmt.Sprintf("INV-%d-%05d", year, issued), nil
		}
		if !retryable(err) {
			return "", err
		}
		s.log.Warn("counter contention, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}

	return "", sequencedomain.ErrCounterConflict
}

// PlaceholderNumber builds a degraded-mode identifier. The TMP prefix keeps
// it visibly distinct from any real INV sequence.
func (s *Service) PlaceholderNumber(year int) string {
	return fmt.Sprintf("TMP-%d-%s", year, strings.ToUpper(uuid.NewString()[:8]))
}

func retryable(err error) bool {
	if errors.Is(err, errStale) {
		return true
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "sqlstate 40001"), // serialization_failure
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"):
		return true
	}
	return false
}
