package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a single income or expense entry on an account.
// Currency is a snapshot of the account's currency taken at save time so
// historical entries keep their original currency even if the account is
// later edited.
type Transaction struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID  string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID string          `gorm:"type:uuid;not null" json:"category_id"`
	Type       TransactionType `gorm:"not null" json:"type"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency   string          `gorm:"size:3;not null" json:"currency"`
	Date       time.Time       `gorm:"not null;index" json:"date"`
	Note       string          `gorm:"size:200" json:"note"`

	// Relationships
	Account  Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Comments []Comment `gorm:"foreignKey:TransactionID" json:"comments,omitempty"`
}
