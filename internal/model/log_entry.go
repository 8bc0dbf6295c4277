package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LogType string

const (
	LogCreate      LogType = "CREATE"
	LogUpdate      LogType = "UPDATE"
	LogDelete      LogType = "DELETE"
	LogTransaction LogType = "TRANSACTION"
	LogTransfer    LogType = "TRANSFER"
)

// LogEntry is one row of the audit log. Entries are only ever inserted; the
// repository exposes no way to change or remove them.
type LogEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Timestamp time.Time  `gorm:"not null;index" json:"timestamp"`
	Type      LogType    `gorm:"type:varchar(20);not null;index" json:"type"`
	BatchID   *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"` // shared by the entries of one cart
	Details   string     `gorm:"type:text" json:"details"`
	UserID    string     `gorm:"type:varchar(255);index" json:"user_id"`
	UserName  string     `gorm:"type:varchar(255)" json:"user_name"`
	Items     []LogItem  `gorm:"foreignKey:LogEntryID" json:"items"`
}

// LogItem records what happened to one product's quantity. QuantityChange is
// negative when a pool shrank (sale, outgoing move) and positive when it grew.
type LogItem struct {
	ID             uint            `gorm:"primaryKey" json:"-"`
	LogEntryID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	ProductID      uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	ProductName    string          `gorm:"type:varchar(255)" json:"product_name"`
	QuantityChange int             `gorm:"not null" json:"quantity_change"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

func (e *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
