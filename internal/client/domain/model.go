package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a billable counterparty. By convention at least one of
// CompanyName and ContactName is non-empty; the billing core only consumes
// the record and never enforces that.
type Client struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyName string            `gorm:"type:text" json:"company_name"`
	ContactName string            `gorm:"type:text" json:"contact_name"`
	Name        string            `gorm:"type:text" json:"name"`
	Email       string            `gorm:"type:text" json:"email"`
	Phone       string            `gorm:"type:text" json:"phone"`
	Address     string            `gorm:"type:text" json:"address"`
	Website     string            `gorm:"type:text" json:"website"`
	VATNumber   string            `gorm:"type:text" json:"vat_number"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// UndefinedDisplayName is shown when a client record carries no usable name.
const UndefinedDisplayName = "Client Undefined"

// DisplayName resolves the name shown on invoices and reports:
// company name, then contact name, then the legacy generic name field.
func (c Client) DisplayName() string {
	switch {
	case c.CompanyName != "":
		return c.CompanyName
	case c.ContactName != "":
		return c.ContactName
	case c.Name != "":
		return c.Name
	default:
		return UndefinedDisplayName
	}
}
