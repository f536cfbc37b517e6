package models

import "gorm.io/gorm"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash AccountType = "cash"
	AccountTypeCard AccountType = "card"
)

// CardKind represents the card network or scheme of a card account
type CardKind string

const (
	CardKindUzcard     CardKind = "UZCARD"
	CardKindHumo       CardKind = "HUMO"
	CardKindVisa       CardKind = "VISA"
	CardKindMastercard CardKind = "MC"
)

// Account represents a financial account in the system. Cash accounts carry
// only a currency; card accounts additionally carry the issuing bank, the
// card scheme, and the last four digits of the card number.
type Account struct {
	Base
	UserID   string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string      `gorm:"not null" json:"name"`
	Type     AccountType `gorm:"not null" json:"type"`
	Currency string      `gorm:"size:3;not null" json:"currency"`

	// For card accounts
	CardKind CardKind `gorm:"size:10" json:"card_kind,omitempty"`
	BankName string   `gorm:"size:80" json:"bank_name,omitempty"`
	Last4    string   `gorm:"size:4" json:"last4,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

// BeforeSave hook clears card-specific fields on non-card accounts so a
// cash account can never carry stale card attributes.
func (a *Account) BeforeSave(tx *gorm.DB) error {
	if a.Type != AccountTypeCard {
		a.CardKind = ""
		a.BankName = ""
		a.Last4 = ""
	}
	return nil
}
