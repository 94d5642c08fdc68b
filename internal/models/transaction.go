package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction directions as reported by the provider.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Transaction is a locally cached copy of a provider transaction. The primary
// key is the provider-issued id, which is stable across repeated fetches, so
// re-ingesting the same transaction replaces the row instead of duplicating
// it. Rows are never edited field-by-field; the provider snapshot is
// authoritative.
type Transaction struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	AccountRef    string          `json:"account_ref"`
	Balance       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"balance"`
	Direction     string          `json:"direction"`
	Category      string          `json:"category"`
	Institution   string          `json:"institution"`
	PostedAt      time.Time       `gorm:"not null;index" json:"posted_at"`
	SubclassTitle *string         `json:"subclass_title,omitempty"`
	SubclassCode  *string         `json:"subclass_code,omitempty"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
