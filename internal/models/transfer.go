package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer represents a movement of funds between two accounts of the same
// user. It is materialized as a pair of transactions: an expense on the
// source account and an income on the destination account. When the two
// accounts share a currency, AmountTo always equals AmountFrom and Rate is
// empty; when the currencies differ, AmountTo is the explicitly supplied
// converted amount.
type Transfer struct {
	Base
	UserID        string           `gorm:"type:uuid;not null;index" json:"user_id"`
	FromAccountID string           `gorm:"type:uuid;not null" json:"from_account_id"`
	ToAccountID   string           `gorm:"type:uuid;not null" json:"to_account_id"`
	AmountFrom    decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount_from"`
	AmountTo      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_to,omitempty"`
	Rate          *decimal.Decimal `gorm:"type:decimal(20,10)" json:"rate,omitempty"`
	Date          time.Time        `gorm:"not null" json:"date"`
	Note          string           `gorm:"size:200" json:"note"`

	// Links to the two generated transactions.
	OutTxID *string `gorm:"type:uuid" json:"out_tx_id,omitempty"`
	InTxID  *string `gorm:"type:uuid" json:"in_tx_id,omitempty"`

	// Relationships
	FromAccount Account      `gorm:"foreignKey:FromAccountID" json:"from_account,omitempty"`
	ToAccount   Account      `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
	OutTx       *Transaction `gorm:"foreignKey:OutTxID" json:"out_tx,omitempty"`
	InTx        *Transaction `gorm:"foreignKey:InTxID" json:"in_tx,omitempty"`
}
