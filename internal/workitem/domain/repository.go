package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository reads taxonomy records. Missing records resolve to (nil, nil);
// an error means the lookup itself failed.
type Repository interface {
	FindCategory(ctx context.Context, id snowflake.ID) (*Category, error)
	FindTask(ctx context.Context, id snowflake.ID) (*Task, error)
	FindDetail(ctx context.Context, id snowflake.ID) (*Detail, error)
}

// Resolver resolves work-item references to display names and rates.
// A batch resolver caches by detail id so entries sharing a detail cost one
// round of lookups.
type Resolver interface {
	Resolve(ctx context.Context, ref Ref) Resolution
	NewBatch() Resolver
}
