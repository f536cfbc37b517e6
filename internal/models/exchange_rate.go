package models

import (
	"time"

	"hamyon/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExchangeRate stores one daily conversion rate: 1 Base = Rate Quote on
// Date. Rows are written by the rate updater (or by an operator) and are
// read-only to the rest of the system, so there is no Base embed and no
// soft delete.
type ExchangeRate struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	Base      string          `gorm:"size:3;not null;uniqueIndex:uq_exchange_rates_pair_date" json:"base"`
	Quote     string          `gorm:"size:3;not null;uniqueIndex:uq_exchange_rates_pair_date" json:"quote"`
	Date      time.Time       `gorm:"not null;uniqueIndex:uq_exchange_rates_pair_date" json:"date"`
	Rate      decimal.Decimal `gorm:"type:decimal(20,10);not null" json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
