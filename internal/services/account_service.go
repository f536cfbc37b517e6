package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// validateAccountInput enforces the account invariants: every account needs
// a currency; card accounts additionally need a card kind, a bank name, and
// a 4-digit last4. Field-level messages mirror the validation surface.
func validateAccountInput(input *AccountInput) error {
	if input.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	switch input.Type {
	case models.AccountTypeCash, models.AccountTypeCard:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be cash or card")
	}

	if input.Currency == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "currency is required")
	}

	if input.Type == models.AccountTypeCard {
		if input.CardKind == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "card kind is required for card accounts")
		}
		if input.BankName == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "bank name is required for card accounts")
		}
		last4 := strings.TrimSpace(input.Last4)
		if len(last4) != 4 || !isDigits(last4) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "last4 must be exactly 4 digits")
		}
		input.Last4 = last4
	} else {
		// Card fields are cleared on non-card accounts.
		input.CardKind = ""
		input.BankName = ""
		input.Last4 = ""
	}

	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CreateAccount creates a new account for a user.
func (s *accountService) CreateAccount(userID string, input AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&input); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:   userID,
		Name:     input.Name,
		Type:     input.Type,
		Currency: input.Currency,
		CardKind: input.CardKind,
		BankName: input.BankName,
		Last4:    input.Last4,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an existing account. The full input is re-validated
// so a card account can never lose its required fields.
func (s *accountService) UpdateAccount(userID, accountID string, input AccountInput) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	if err := validateAccountInput(&input); err != nil {
		return nil, err
	}

	account.Name = input.Name
	account.Type = input.Type
	account.Currency = input.Currency
	account.CardKind = input.CardKind
	account.BankName = input.BankName
	account.Last4 = input.Last4

	if err := s.db.Save(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// DeleteAccount soft-deletes an account together with its transactions.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ? AND user_id = ?", accountID, userID).
			Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
