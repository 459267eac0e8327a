package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(summarize bool, level billingdomain.DetailLevel) billingdomain.Policy {
	return billingdomain.Policy{
		DetailLevel:     level,
		SummarizeByRate: summarize,
		TaxRatePercent:  decimal.RequireFromString("21"),
		Currency:        "EUR",
	}
}

func decoratedEntry(id snowflake.ID, start time.Time, seconds int64, rate string, category, task, detail string) timeentrydomain.DecoratedEntry {
	res := workitemdomain.Resolution{
		CategoryName: category,
		TaskName:     task,
		DetailName:   detail,
	}
	if rate != "" {
		res.HourlyRate = decimal.NullDecimal{Decimal: decimal.RequireFromString(rate), Valid: true}
	}
	return timeentrydomain.DecoratedEntry{
		TimeEntry: timeentrydomain.TimeEntry{
			ID:        id,
			StartTime: start,
			EndTime:   start.Add(time.Duration(seconds) * time.Second),
			Duration:  seconds,
		},
		Resolution: res,
	}
}

func selection(entries ...timeentrydomain.DecoratedEntry) map[snowflake.ID]struct{} {
	selected := make(map[snowflake.ID]struct{}, len(entries))
	for _, e := range entries {
		selected[e.ID] = struct{}{}
	}
	return selected
}

func TestAggregate_SummarizeByRate(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)

	a := decoratedEntry(node.Generate(), jan2, 3600, "50.00", "Consulting", "Advisory Sessions", "Senior Consultant")
	b := decoratedEntry(node.Generate(), jan5, 1800, "50.00", "Development", "Backend", "Engineering")

	agg, err := Aggregate([]timeentrydomain.DecoratedEntry{a, b}, selection(a, b), testPolicy(true, billingdomain.DetailLevelDetail))
	require.NoError(t, err)

	require.Len(t, agg.LineItems, 1)
	item := agg.LineItems[0]
	assert.Equal(t, "1.50", item.Quantity)
	assert.Equal(t, "50.00", item.Rate)
	assert.True(t, item.Amount.Equal(decimal.RequireFromString("75")))
	assert.Equal(t, "Services at EUR50.00/hr, rendered from Jan 2, 2026 to Jan 5, 2026. Categories: Consulting, Development.", item.Description)

	assert.True(t, agg.Subtotal.Equal(decimal.RequireFromString("75")))
	assert.True(t, agg.Tax.Equal(decimal.RequireFromString("15.75")))
	assert.True(t, agg.Total.Equal(decimal.RequireFromString("90.75")))
}

func TestAggregate_PerEntryTaskLevel(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)

	a := decoratedEntry(node.Generate(), jan2, 3600, "50.00", "Consulting", "Advisory Sessions", "Senior Consultant")
	b := decoratedEntry(node.Generate(), jan5, 1800, "50.00", "Development", "Backend", "Engineering")

	agg, err := Aggregate([]timeentrydomain.DecoratedEntry{a, b}, selection(a, b), testPolicy(false, billingdomain.DetailLevelTask))
	require.NoError(t, err)

	require.Len(t, agg.LineItems, 2)
	assert.Equal(t, "Jan 2, 2026 - Consulting > Advisory Sessions", agg.LineItems[0].Description)
	assert.Equal(t, "1.00", agg.LineItems[0].Quantity)
	assert.Equal(t, "Jan 5, 2026 - Development > Backend", agg.LineItems[1].Description)
	assert.Equal(t, "0.50", agg.LineItems[1].Quantity)
	assert.True(t, agg.Subtotal.Equal(decimal.RequireFromString("75")))
}

func TestAggregate_UnratedEntriesBillZero(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	a := decoratedEntry(node.Generate(), jan2, 7200, "", "Development", "Backend", "Internal Tooling")

	agg, err := Aggregate([]timeentrydomain.DecoratedEntry{a}, selection(a), testPolicy(false, billingdomain.DetailLevelDetail))
	require.NoError(t, err)

	require.Len(t, agg.LineItems, 1)
	assert.Equal(t, billingdomain.RateNotApplicable, agg.LineItems[0].Rate)
	assert.True(t, agg.LineItems[0].Amount.IsZero())
	assert.True(t, agg.Subtotal.IsZero())
	assert.True(t, agg.Total.IsZero())
}

func TestAggregate_RatePartitionOrdering(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	high := decoratedEntry(node.Generate(), jan2, 3600, "150.00", "Consulting", "Advisory Sessions", "Senior Consultant")
	low := decoratedEntry(node.Generate(), jan2.Add(time.Hour), 3600, "95.00", "Development", "Backend", "Engineering")
	unrated := decoratedEntry(node.Generate(), jan2.Add(2*time.Hour), 3600, "", "Development", "Backend", "Internal Tooling")

	agg, err := Aggregate([]timeentrydomain.DecoratedEntry{high, low, unrated}, selection(high, low, unrated), testPolicy(true, billingdomain.DetailLevelDetail))
	require.NoError(t, err)

	require.Len(t, agg.LineItems, 3)
	assert.Equal(t, "95.00", agg.LineItems[0].Rate)
	assert.Equal(t, "150.00", agg.LineItems[1].Rate)
	assert.Equal(t, billingdomain.RateNotApplicable, agg.LineItems[2].Rate)
	assert.Contains(t, agg.LineItems[2].Description, "Services with unspecified rate")
}

func TestAggregate_OnlySelectedEntriesCount(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	a := decoratedEntry(node.Generate(), jan2, 3600, "50.00", "Consulting", "Advisory Sessions", "Senior Consultant")
	skipped := decoratedEntry(node.Generate(), jan2.Add(time.Hour), 3600, "50.00", "Consulting", "Advisory Sessions", "Senior Consultant")

	agg, err := Aggregate([]timeentrydomain.DecoratedEntry{a, skipped}, selection(a), testPolicy(true, billingdomain.DetailLevelDetail))
	require.NoError(t, err)

	require.Len(t, agg.LineItems, 1)
	assert.Equal(t, "1.00", agg.LineItems[0].Quantity)
}

func TestAggregate_SubtotalEqualsLineItemSum(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	entries := []timeentrydomain.DecoratedEntry{
		decoratedEntry(node.Generate(), jan2, 2700, "80.00", "Consulting", "Advisory Sessions", "Senior Consultant"),
		decoratedEntry(node.Generate(), jan2.Add(time.Hour), 5400, "95.00", "Development", "Backend", "Engineering"),
		decoratedEntry(node.Generate(), jan2.Add(2*time.Hour), 1234, "95.00", "Development", "Backend", "Engineering"),
		decoratedEntry(node.Generate(), jan2.Add(3*time.Hour), 555, "", "Development", "Backend", "Internal Tooling"),
	}

	agg, err := Aggregate(entries, selection(entries...), testPolicy(true, billingdomain.DetailLevelDetail))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range agg.LineItems {
		sum = sum.Add(item.Amount)
	}
	assert.True(t, agg.Subtotal.Equal(sum))
	assert.True(t, agg.Total.Equal(agg.Subtotal.Add(agg.Tax)))
}

func TestAggregate_Deterministic(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jan2 := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	entries := []timeentrydomain.DecoratedEntry{
		decoratedEntry(node.Generate(), jan2, 3600, "150.00", "Consulting", "Advisory Sessions", "Senior Consultant"),
		decoratedEntry(node.Generate(), jan2.Add(time.Hour), 1800, "95.00", "Development", "Backend", "Engineering"),
		decoratedEntry(node.Generate(), jan2.Add(2*time.Hour), 900, "", "Development", "Backend", "Internal Tooling"),
	}
	selected := selection(entries...)
	policy := testPolicy(true, billingdomain.DetailLevelDetail)

	first, err := Aggregate(entries, selected, policy)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Aggregate(entries, selected, policy)
		require.NoError(t, err)
		assert.Equal(t, first.LineItems, again.LineItems)
	}
}

func TestAggregate_InvalidPolicy(t *testing.T) {
	policy := testPolicy(false, billingdomain.DetailLevel("bogus"))
	_, err := Aggregate(nil, nil, policy)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPolicy)
}
