package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost. It never touches inventory and only feeds
// the accounting projection.
type Expense struct {
	BaseModel
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}
