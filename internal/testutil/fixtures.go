package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hamyon/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCashAccount creates a cash account in the given currency.
func CreateTestCashAccount(t *testing.T, db *gorm.DB, userID, currency string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Cash %d", nextID()),
		Type:     models.AccountTypeCash,
		Currency: currency,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test cash account: %v", err)
	}
	return account
}

// CreateTestCardAccount creates a card account in the given currency.
func CreateTestCardAccount(t *testing.T, db *gorm.DB, userID, currency string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Card %d", nextID()),
		Type:     models.AccountTypeCard,
		Currency: currency,
		CardKind: models.CardKindUzcard,
		BankName: "Test Bank",
		Last4:    "1234",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test card account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction on the account. The currency
// snapshot is taken from the account.
func CreateTestTransaction(t *testing.T, db *gorm.DB, user *models.User, account *models.Account, category *models.Category, txType models.TransactionType, amount string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     user.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       txType,
		Amount:     decimal.RequireFromString(amount),
		Currency:   account.Currency,
		Date:       time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRate stores an exchange rate for the pair on the given day.
func CreateTestRate(t *testing.T, db *gorm.DB, base, quote string, date time.Time, rate string) *models.ExchangeRate {
	t.Helper()

	row := &models.ExchangeRate{
		Base:  base,
		Quote: quote,
		Date:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Rate:  decimal.RequireFromString(rate),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test exchange rate: %v", err)
	}
	return row
}
