package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"github.com/shopspring/decimal"
)

const displayDateLayout = "Jan 2, 2006"

var secondsPerHour = decimal.NewFromInt(3600)

// Aggregate turns decorated entries plus a grouping policy into ordered line
// items and totals. It is pure: same inputs, same output, no clock and no
// store access. Amounts stay exact decimals; rounding happens at rendering.
func Aggregate(
	entries []timeentrydomain.DecoratedEntry,
	selected map[snowflake.ID]struct{},
	policy billingdomain.Policy,
) (billingdomain.Aggregation, error) {
	if err := policy.Validate(); err != nil {
		return billingdomain.Aggregation{}, err
	}

	picked := make([]timeentrydomain.DecoratedEntry, 0, len(selected))
	for _, entry := range entries {
		if _, ok := selected[entry.ID]; ok {
			picked = append(picked, entry)
		}
	}

	var items []billingdomain.LineItem
	if policy.SummarizeByRate {
		items = summarizeByRate(picked, policy.Currency)
	} else {
		items = perEntryItems(picked, policy.DetailLevel)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	tax := subtotal.Mul(policy.TaxRatePercent).Div(decimal.NewFromInt(100))

	return billingdomain.Aggregation{
		LineItems: items,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
	}, nil
}

func entryHours(entry timeentrydomain.DecoratedEntry) decimal.Decimal {
	return decimal.NewFromInt(entry.Duration).Div(secondsPerHour)
}

func perEntryItems(entries []timeentrydomain.DecoratedEntry, level billingdomain.DetailLevel) []billingdomain.LineItem {
	items := make([]billingdomain.LineItem, 0, len(entries))
	for _, entry := range entries {
		var path string
		switch level {
		case billingdomain.DetailLevelDetail:
			path = fmt.Sprintf("%s > %s > %s", entry.Resolution.CategoryName, entry.Resolution.TaskName, entry.Resolution.DetailName)
		case billingdomain.DetailLevelTask:
			path = fmt.Sprintf("%s > %s", entry.Resolution.CategoryName, entry.Resolution.TaskName)
		default:
			path = entry.Resolution.CategoryName
		}

		hours := entryHours(entry)
		rate := billingdomain.RateNotApplicable
		amount := decimal.Zero
		if entry.Resolution.HourlyRate.Valid {
			rate = entry.Resolution.HourlyRate.Decimal.StringFixed(2)
			amount = hours.Mul(entry.Resolution.HourlyRate.Decimal)
		}

		items = append(items, billingdomain.LineItem{
			Description: fmt.Sprintf("%s - %s", entry.StartTime.Format(displayDateLayout), path),
			Quantity:    hours.StringFixed(2),
			Rate:        rate,
			Amount:      amount,
		})
	}
	return items
}

// ratePartition accumulates one summarized line: every selected entry whose
// hourly rate shares the partition key.
type ratePartition struct {
	key        string
	rate       decimal.Decimal
	hasRate    bool
	hours      decimal.Decimal
	amount     decimal.Decimal
	earliest   time.Time
	latest     time.Time
	categories []string
	seen       map[string]struct{}
}

func summarizeByRate(entries []timeentrydomain.DecoratedEntry, currency string) []billingdomain.LineItem {
	partitions := make(map[string]*ratePartition)
	for _, entry := range entries {
		key := billingdomain.RateNotApplicable
		if entry.Resolution.HourlyRate.Valid {
			key = entry.Resolution.HourlyRate.Decimal.StringFixed(2)
		}

		part, ok := partitions[key]
		if !ok {
			part = &ratePartition{
				key:      key,
				earliest: entry.StartTime,
				latest:   entry.StartTime,
				seen:     make(map[string]struct{}),
			}
			if entry.Resolution.HourlyRate.Valid {
				part.rate = entry.Resolution.HourlyRate.Decimal
				part.hasRate = true
			}
			partitions[key] = part
		}

		hours := entryHours(entry)
		part.hours = part.hours.Add(hours)
		if part.hasRate {
			part.amount = part.amount.Add(hours.Mul(part.rate))
		}
		if entry.StartTime.Before(part.earliest) {
			part.earliest = entry.StartTime
		}
		if entry.StartTime.After(part.latest) {
			part.latest = entry.StartTime
		}
		if name := entry.Resolution.CategoryName; name != "" && name != workitemdomain.NameNotAvailable {
			if _, dup := part.seen[name]; !dup {
				part.seen[name] = struct{}{}
				part.categories = append(part.categories, name)
			}
		}
	}

	ordered := make([]*ratePartition, 0, len(partitions))
	for _, part := range partitions {
		ordered = append(ordered, part)
	}
	// Rate ascending, the unspecified-rate partition last.
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.hasRate != b.hasRate {
			return a.hasRate
		}
		return a.rate.LessThan(b.rate)
	})

	items := make([]billingdomain.LineItem, 0, len(ordered))
	for _, part := range ordered {
		span := fmt.Sprintf("%s to %s", part.earliest.Format(displayDateLayout), part.latest.Format(displayDateLayout))
		var description string
		if part.hasRate {
			description = fmt.Sprintf("Services at %s%s/hr, rendered from %s.", currency, part.key, span)
		} else {
			description = fmt.Sprintf("Services with unspecified rate, rendered from %s.", span)
		}
		if len(part.categories) > 0 {
			description += fmt.Sprintf(" Categories: %s.", strings.Join(part.categories, ", "))
		}

		items = append(items, billingdomain.LineItem{
			Description: description,
			Quantity:    part.hours.StringFixed(2),
			Rate:        part.key,
			Amount:      part.amount,
		})
	}
	return items
}
