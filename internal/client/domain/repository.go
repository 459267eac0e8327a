package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cogentahq/timebill/pkg/db/pagination"
)

// Repository reads client records. The billing core never writes them.
type Repository interface {
	FindByID(ctx context.Context, id snowflake.ID) (*Client, error)
	List(ctx context.Context, page pagination.Pagination) ([]Client, error)
	Count(ctx context.Context) (int64, error)
}
