package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hamyon/internal/models"
	"hamyon/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID, firstName, lastName string) (*models.User, error)
}

// AccountInput holds the fields for creating or updating an account.
type AccountInput struct {
	Name     string
	Type     models.AccountType
	Currency string
	CardKind models.CardKind
	BankName string
	Last4    string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, input AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, input AccountInput) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetUserCategoriesByType(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error

	// GetOrCreateWellKnown returns the user's auto-created category for the
	// given canonical key, creating it with the given display name on first
	// use. It runs on the supplied DB handle so callers can include it in a
	// larger transaction.
	GetOrCreateWellKnown(tx *gorm.DB, userID string, categoryType models.CategoryType, key, name string) (*models.Category, error)
}

// TransactionInput holds the fields for creating or updating a transaction.
type TransactionInput struct {
	AccountID  string
	CategoryID string
	Type       models.TransactionType
	Amount     decimal.Decimal
	Currency   string // optional; defaults to the account's currency
	Date       time.Time
	Note       string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
	Search     string // matches note or category name, case-insensitive
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error

	AddComment(userID, transactionID, text string) (*models.Comment, error)
	GetComments(userID, transactionID string, page pagination.PageRequest) (*pagination.PageResponse[models.Comment], error)
}

// TransferInput holds the fields for creating a transfer.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	AmountFrom    decimal.Decimal
	AmountTo      *decimal.Decimal
	Rate          *decimal.Decimal
	Date          time.Time
	Note          string
}

// TransferServicer defines the contract for transfer-related business logic.
type TransferServicer interface {
	CreateTransfer(userID string, input TransferInput) (*models.Transfer, error)
	GetUserTransfers(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transfer], error)
	GetTransferByID(userID, transferID string) (*models.Transfer, error)
	DeleteTransfer(userID, transferID string) error
}

// ExchangeServicer defines the contract for exchange rate lookups and conversion.
type ExchangeServicer interface {
	// GetRate returns the rate for converting base into quote as of the given
	// date. A zero asOf means today. Returns ErrRateUnavailable when no rate
	// with date <= asOf is stored for the pair.
	GetRate(base, quote string, asOf time.Time) (decimal.Decimal, error)

	// Convert multiplies amount by the resolved rate and rounds the result
	// to 2 decimal places, half up.
	Convert(amount decimal.Decimal, base, quote string, asOf time.Time) (decimal.Decimal, error)

	LatestRate(base, quote string) (*models.ExchangeRate, error)
	ListRates(base, quote string, page pagination.PageRequest) (*pagination.PageResponse[models.ExchangeRate], error)

	// UpsertRate stores a rate for (base, quote, date), overwriting any
	// existing row for the same key.
	UpsertRate(base, quote string, date time.Time, rate decimal.Decimal) (*models.ExchangeRate, error)
}

// RateUpdater fetches current rates from a remote source and stores them.
type RateUpdater interface {
	UpdateUSDRate(ctx context.Context) (*models.ExchangeRate, error)
}

// CurrencyTotals holds income/expense/balance sums for one currency.
type CurrencyTotals struct {
	Currency string          `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Balance  decimal.Decimal `json:"balance"`
}

// Summary is the aggregated view over a filtered transaction set.
type Summary struct {
	ByCurrency      []CurrencyTotals `json:"by_currency"`
	PrimaryCurrency string           `json:"primary_currency"`
	TotalBalance    decimal.Decimal  `json:"total_balance"`
}

// SummaryFilter restricts which transactions a summary covers.
type SummaryFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Search   string
}

// MonthTotals holds income and expense sums for one calendar month.
type MonthTotals struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal holds the expense sum for one category.
type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// YearlyBreakdown is the per-month and per-category view for one year and currency.
type YearlyBreakdown struct {
	Year                 int             `json:"year"`
	Currency             string          `json:"currency"`
	Months               []MonthTotals   `json:"months"`
	TopExpenseCategories []CategoryTotal `json:"top_expense_categories"`
}

// AccountBalance is the computed balance of one account.
type AccountBalance struct {
	AccountID string             `json:"account_id"`
	Name      string             `json:"name"`
	Type      models.AccountType `json:"type"`
	Currency  string             `json:"currency"`
	Balance   decimal.Decimal    `json:"balance"`
}

// ReportServicer defines the contract for aggregation and reporting.
type ReportServicer interface {
	Summary(userID string, filter SummaryFilter) (*Summary, error)
	YearlyBreakdown(userID string, year int, currency string) (*YearlyBreakdown, error)
	AccountBalances(userID string) ([]AccountBalance, error)
}
