package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cogentahq/timebill/internal/clock"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSequenceService(t *testing.T, name string) sequencedomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// sqlite serializes writers; a single connection keeps concurrent
	// transactions from tripping over database-is-locked errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&sequencedomain.InvoiceCounter{}))

	return NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.Fixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
	})
}

func TestIssueNumber_ContiguousSequence(t *testing.T) {
	svc := newSequenceService(t, "seq_contiguous")
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		number, err := svc.IssueNumber(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-2026-%05d", i), number)
	}
}

func TestIssueNumber_YearRollover(t *testing.T) {
	svc := newSequenceService(t, "seq_rollover")
	ctx := context.Background()

	number, err := svc.IssueNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-00001", number)

	number, err = svc.IssueNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-00002", number)

	// First issuance of the new year restarts at 1.
	number, err = svc.IssueNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", number)
}

func TestIssueNumber_ConcurrentCallersNeverShareANumber(t *testing.T) {
	svc := newSequenceService(t, "seq_concurrent")
	ctx := context.Background()

	const callers = 10

	var wg sync.WaitGroup
	results := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.IssueNumber(ctx, 2026)
			if err == nil {
				results <- number
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{})
	for number := range results {
		_, dup := seen[number]
		require.False(t, dup, "duplicate invoice number %s", number)
		seen[number] = struct{}{}
	}
	require.NotEmpty(t, seen)
}

func TestPlaceholderNumber(t *testing.T) {
	svc := newSequenceService(t, "seq_placeholder")

	number := svc.PlaceholderNumber(2026)
	assert.True(t, strings.HasPrefix(number, "TMP-2026-"), number)
	assert.Len(t, number, len("TMP-2026-")+8)

	assert.NotEqual(t, number, svc.PlaceholderNumber(2026))
}
