package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	accountService  AccountServicer
	categoryService CategoryServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, categoryService CategoryServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		accountService:  accountService,
		categoryService: categoryService,
	}
}

// validateTransactionInput resolves and checks the referenced account and
// category (both must belong to the user) and fills in the currency snapshot
// from the account when the input leaves it empty.
func (s *transactionService) validateTransactionInput(userID string, input *TransactionInput) error {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be income or expense")
	}

	account, err := s.accountService.GetAccountByID(userID, input.AccountID)
	if err != nil {
		return err
	}

	if _, err := s.categoryService.GetCategoryByID(userID, input.CategoryID); err != nil {
		return err
	}

	// Currency snapshot: default from the account, otherwise it must match.
	if input.Currency == "" {
		input.Currency = account.Currency
	} else if input.Currency != account.Currency {
		return apperrors.ErrCurrencyMismatch
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	input.Note = truncateNote(input.Note)

	return nil
}

// CreateTransaction creates a new transaction on one of the user's accounts.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if err := s.validateTransactionInput(userID, &input); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:     userID,
		AccountID:  input.AccountID,
		CategoryID: input.CategoryID,
		Type:       input.Type,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Date:       input.Date,
		Note:       input.Note,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Account").Preload("Category").
		Order("transactions.date DESC, transactions.id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	filter.AccountID = &accountID
	return s.GetUserTransactions(userID, page, filter)
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("transactions.account_id = ?", *f.AccountID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Joins("JOIN categories ON categories.id = transactions.category_id").
			Where("LOWER(transactions.note) LIKE LOWER(?) OR LOWER(categories.name) LIKE LOWER(?)", pattern, pattern)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Account").Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces the editable fields of a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.validateTransactionInput(userID, &input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"account_id":  input.AccountID,
		"category_id": input.CategoryID,
		"type":        input.Type,
		"amount":      input.Amount,
		"currency":    input.Currency,
		"date":        input.Date,
		"note":        input.Note,
	}
	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction deletes a transaction
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddComment attaches a comment to one of the user's transactions.
func (s *transactionService) AddComment(userID, transactionID, text string) (*models.Comment, error) {
	if text == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "comment text is required")
	}

	if _, err := s.GetTransactionByID(userID, transactionID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TransactionID: transactionID,
		UserID:        userID,
		Text:          text,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return comment, nil
}

// GetComments lists the comments on one of the user's transactions, oldest first.
func (s *transactionService) GetComments(userID, transactionID string, page pagination.PageRequest) (*pagination.PageResponse[models.Comment], error) {
	if _, err := s.GetTransactionByID(userID, transactionID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Comment{}).Where("transaction_id = ?", transactionID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var comments []models.Comment
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(comments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// truncateNote clamps free-text notes to the column size. The limit counts
// runes, not bytes, so a multibyte note is never cut mid-character.
func truncateNote(note string) string {
	runes := []rune(note)
	if len(runes) > 200 {
		return string(runes[:200])
	}
	return note
}
