package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct {
	categories map[snowflake.ID]*workitemdomain.Category
	tasks      map[snowflake.ID]*workitemdomain.Task
	details    map[snowflake.ID]*workitemdomain.Detail

	detailErr error

	detailCalls atomic.Int64
}

func (m *repoMock) FindCategory(ctx context.Context, id snowflake.ID) (*workitemdomain.Category, error) {
	return m.categories[id], nil
}

func (m *repoMock) FindTask(ctx context.Context, id snowflake.ID) (*workitemdomain.Task, error) {
	return m.tasks[id], nil
}

func (m *repoMock) FindDetail(ctx context.Context, id snowflake.ID) (*workitemdomain.Detail, error) {
	m.detailCalls.Add(1)
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.details[id], nil
}

func newResolverForTest(repo workitemdomain.Repository) workitemdomain.Resolver {
	return NewResolver(ResolverParam{Log: zap.NewNop(), Repo: repo})
}

func TestResolve_FullChain(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	categoryID := node.Generate()
	taskID := node.Generate()
	detailID := node.Generate()

	rate := decimal.NullDecimal{Decimal: decimal.RequireFromString("95.00"), Valid: true}
	repo := &repoMock{
		categories: map[snowflake.ID]*workitemdomain.Category{categoryID: {ID: categoryID, Name: "Development"}},
		tasks:      map[snowflake.ID]*workitemdomain.Task{taskID: {ID: taskID, CategoryID: categoryID, Name: "Backend"}},
		details:    map[snowflake.ID]*workitemdomain.Detail{detailID: {ID: detailID, TaskID: taskID, Name: "Engineering", HourlyRate: rate}},
	}

	res := newResolverForTest(repo).Resolve(context.Background(), workitemdomain.Ref{
		CategoryID: categoryID,
		TaskID:     taskID,
		DetailID:   detailID,
	})

	assert.Equal(t, "Development", res.CategoryName)
	assert.Equal(t, "Backend", res.TaskName)
	assert.Equal(t, "Engineering", res.DetailName)
	require.True(t, res.HourlyRate.Valid)
	assert.True(t, res.HourlyRate.Decimal.Equal(decimal.RequireFromString("95.00")))
}

func TestResolve_DeletedDetailDegrades(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	categoryID := node.Generate()
	repo := &repoMock{
		categories: map[snowflake.ID]*workitemdomain.Category{categoryID: {ID: categoryID, Name: "Consulting"}},
	}

	res := newResolverForTest(repo).Resolve(context.Background(), workitemdomain.Ref{
		CategoryID: categoryID,
		TaskID:     node.Generate(),
		DetailID:   node.Generate(),
	})

	assert.Equal(t, workitemdomain.DetailNotFound, res.DetailName)
	assert.False(t, res.HourlyRate.Valid)
	// Detail resolution short-circuits; names above the detail stay N/A.
	assert.Equal(t, workitemdomain.NameNotAvailable, res.TaskName)
	assert.Equal(t, workitemdomain.NameNotAvailable, res.CategoryName)
}

func TestResolve_DetailLookupFailure(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := &repoMock{detailErr: errors.New("connection reset")}

	res := newResolverForTest(repo).Resolve(context.Background(), workitemdomain.Ref{
		CategoryID: node.Generate(),
		TaskID:     node.Generate(),
		DetailID:   node.Generate(),
	})

	assert.Equal(t, workitemdomain.ErrFetchingDetail, res.DetailName)
	assert.False(t, res.HourlyRate.Valid)
}

func TestResolve_BatchCachesByDetail(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	categoryID := node.Generate()
	taskID := node.Generate()
	detailID := node.Generate()

	repo := &repoMock{
		categories: map[snowflake.ID]*workitemdomain.Category{categoryID: {ID: categoryID, Name: "Development"}},
		tasks:      map[snowflake.ID]*workitemdomain.Task{taskID: {ID: taskID, CategoryID: categoryID, Name: "Backend"}},
		details:    map[snowflake.ID]*workitemdomain.Detail{detailID: {ID: detailID, TaskID: taskID, Name: "Engineering"}},
	}

	base := newResolverForTest(repo).(*Resolver)
	batch := base.NewBatch()

	ref := workitemdomain.Ref{CategoryID: categoryID, TaskID: taskID, DetailID: detailID}
	for i := 0; i < 100; i++ {
		res := batch.Resolve(context.Background(), ref)
		assert.Equal(t, "Engineering", res.DetailName)
	}

	assert.Equal(t, int64(1), repo.detailCalls.Load())
}

func TestResolve_ErrorsNotCached(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := &repoMock{detailErr: errors.New("transient")}

	base := newResolverForTest(repo).(*Resolver)
	batch := base.NewBatch()

	ref := workitemdomain.Ref{DetailID: node.Generate()}
	batch.Resolve(context.Background(), ref)
	batch.Resolve(context.Background(), ref)

	// A failed lookup must be retried, not served from the batch cache.
	assert.Equal(t, int64(2), repo.detailCalls.Load())
}
