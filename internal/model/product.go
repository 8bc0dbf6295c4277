package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product carries two independent quantity pools: StockQuantity is held in
// the stockroom, ShopQuantity is on the shop floor and is what sales draw on.
// Neither pool may go below zero.
type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Brand         string          `gorm:"type:varchar(100)" json:"brand"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null" json:"stock_quantity"`
	ShopQuantity  int             `gorm:"not null" json:"shop_quantity"`
	Barcode       *string         `gorm:"type:varchar(64);uniqueIndex" json:"barcode,omitempty"`
	ImageURL      *string         `gorm:"type:text" json:"image_url,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`

	// Version is bumped on every write and used as the compare-and-swap token
	// for quantity updates.
	Version int64 `gorm:"not null" json:"version"`
}

// TotalQuantity is the sum of both pools.
func (p *Product) TotalQuantity() int {
	return p.StockQuantity + p.ShopQuantity
}
