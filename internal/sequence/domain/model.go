// Package domain defines the year-scoped invoice number counter. The counter
// row is the single concurrently-mutated record in the billing core and is
// written only by the numbering service, inside a transaction.
package domain

import (
	"context"
	"errors"
	"time"
)

// InvoiceCounter is the singleton counter record. Year rotates in place:
// the first issuance of a new year resets CurrentNumber to 1.
type InvoiceCounter struct {
	ID            int64     `gorm:"primaryKey"`
	CurrentNumber int64     `gorm:"not null"`
	Year          int       `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }

// ErrCounterConflict reports that the issuing transaction could not commit
// after bounded retries. No number was assigned; the caller may fall back to
// a placeholder identifier, never to a guessed sequence value.
var ErrCounterConflict = errors.New("invoice counter transaction could not commit")

type Service interface {
	// IssueNumber atomically increments the counter for year and returns
	// "INV-<year>-<5-digit sequence>". Concurrent callers never observe the
	// same sequence value for the same year.
	IssueNumber(ctx context.Context, year int) (string, error)

	// PlaceholderNumber returns a clearly non-sequential identifier for
	// degraded operation. Its prefix can never collide with real numbers.
	PlaceholderNumber(year int) string
}
