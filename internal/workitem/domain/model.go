// Package domain holds the three-level work-item taxonomy:
// category → task → billable detail.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

type Task struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CategoryID snowflake.ID `gorm:"not null;index" json:"category_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Detail is the leaf, billable node. A null hourly rate means the work is
// unbilled or the rate is unknown.
type Detail struct {
	ID         snowflake.ID        `gorm:"primaryKey" json:"id"`
	TaskID     snowflake.ID        `gorm:"not null;index" json:"task_id"`
	Name       string              `gorm:"type:text;not null" json:"name"`
	HourlyRate decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"hourly_rate"`
	CreatedAt  time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"not null" json:"updated_at"`
}

func (Detail) TableName() string { return "details" }

// Ref is the composite key a time entry carries for its work item. Keeping
// all three levels on the entry makes resolution a set of direct lookups
// instead of a parent-pointer walk.
type Ref struct {
	CategoryID snowflake.ID `json:"category_id"`
	TaskID     snowflake.ID `json:"task_id"`
	DetailID   snowflake.ID `json:"detail_id"`
}

// Sentinel display values used when resolution degrades. Resolution never
// fails a batch over one dangling reference; the affected field carries a
// sentinel instead.
const (
	NameNotAvailable    = "N/A"
	DetailNotFound      = "Detail Not Found"
	ErrFetchingDetail   = "Error fetching detail"
	ErrFetchingTask     = "Error fetching task"
	ErrFetchingCategory = "Error fetching category"
)

// Resolution is the display view of one work-item reference.
type Resolution struct {
	CategoryName string              `json:"category_name"`
	TaskName     string              `json:"task_name"`
	DetailName   string              `json:"detail_name"`
	HourlyRate   decimal.NullDecimal `json:"hourly_rate"`
}
