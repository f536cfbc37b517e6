package models

// Comment is a free-text note attached to a transaction. CreatedAt is set
// once by the Base hook and never updated afterwards.
type Comment struct {
	Base
	TransactionID string `gorm:"type:uuid;not null;index" json:"transaction_id"`
	UserID        string `gorm:"type:uuid;not null" json:"user_id"`
	Text          string `gorm:"not null" json:"text"`
}
