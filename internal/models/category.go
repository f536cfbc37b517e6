package models

// CategoryType represents the direction of a category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Well-known category keys. Categories created automatically for the two
// legs of a transfer are looked up by (user, type, key) rather than by
// display name, so renaming or localizing the display name never causes
// a duplicate to be created.
const (
	WellKnownTransferOut = "transfer_out"
	WellKnownTransferIn  = "transfer_in"
)

// Category represents a transaction category
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index;uniqueIndex:uq_categories_user_wellknown" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Type   CategoryType `gorm:"not null" json:"type"`

	// WellKnownKey is set only on auto-created categories (transfer legs).
	WellKnownKey *string `gorm:"size:40;uniqueIndex:uq_categories_user_wellknown" json:"well_known_key,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
