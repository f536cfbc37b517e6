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

// Display names for the auto-created transfer categories.
const (
	transferOutName = "Transfer (outgoing)"
	transferInName  = "Transfer (incoming)"
)

// transferService creates and manages transfers between a user's accounts.
// A transfer is materialized as a pair of transactions; the pair and the
// transfer row are written as one atomic unit.
type transferService struct {
	db              *gorm.DB
	accountService  AccountServicer
	categoryService CategoryServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, accountService AccountServicer, categoryService CategoryServicer) TransferServicer {
	return &transferService{
		db:              db,
		accountService:  accountService,
		categoryService: categoryService,
	}
}

// CreateTransfer validates and persists a transfer together with its two
// transaction legs. Either everything is written or nothing is.
func (s *transferService) CreateTransfer(userID string, input TransferInput) (*models.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}
	if input.AmountFrom.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	// Both accounts must belong to the initiating user; a foreign account
	// surfaces as not-found.
	from, err := s.accountService.GetAccountByID(userID, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := s.accountService.GetAccountByID(userID, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	if from.Currency == to.Currency {
		// Same currency: the destination amount is always the source amount
		// and no rate applies, regardless of what the caller supplied.
		input.AmountTo = &input.AmountFrom
		input.Rate = nil
	} else {
		// Different currencies: an explicit destination amount is required.
		// An auto-derived quote is deliberately not trusted for money
		// movement.
		if input.AmountTo == nil {
			return nil, apperrors.ErrAmountToRequired
		}
		if input.AmountTo.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "destination amount must be greater than zero")
		}
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	input.Note = truncateNote(input.Note)

	transfer := &models.Transfer{
		UserID:        userID,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		AmountFrom:    input.AmountFrom,
		AmountTo:      input.AmountTo,
		Rate:          input.Rate,
		Date:          input.Date,
		Note:          input.Note,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transfer).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		catOut, err := s.categoryService.GetOrCreateWellKnown(tx, userID, models.CategoryTypeExpense, models.WellKnownTransferOut, transferOutName)
		if err != nil {
			return err
		}
		catIn, err := s.categoryService.GetOrCreateWellKnown(tx, userID, models.CategoryTypeIncome, models.WellKnownTransferIn, transferInName)
		if err != nil {
			return err
		}

		outTx := &models.Transaction{
			UserID:     userID,
			AccountID:  from.ID,
			CategoryID: catOut.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     transfer.AmountFrom,
			Currency:   from.Currency,
			Date:       transfer.Date,
			Note:       transfer.Note,
		}
		if err := tx.Create(outTx).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		inAmount := transfer.AmountFrom
		if transfer.AmountTo != nil {
			inAmount = *transfer.AmountTo
		}
		inTx := &models.Transaction{
			UserID:     userID,
			AccountID:  to.ID,
			CategoryID: catIn.ID,
			Type:       models.TransactionTypeIncome,
			Amount:     inAmount,
			Currency:   to.Currency,
			Date:       transfer.Date,
			Note:       transfer.Note,
		}
		if err := tx.Create(inTx).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		transfer.OutTxID = &outTx.ID
		transfer.InTxID = &inTx.ID
		if err := tx.Model(transfer).Updates(map[string]interface{}{
			"out_tx_id": outTx.ID,
			"in_tx_id":  inTx.ID,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetUserTransfers retrieves a paginated list of the user's transfers, newest first.
func (s *transferService) GetUserTransfers(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transfer], error) {
	page.Defaults()

	base := s.db.Model(&models.Transfer{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transfers []models.Transfer
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("FromAccount").Preload("ToAccount").
		Order("date DESC, id DESC").
		Find(&transfers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transfers, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransferByID retrieves a transfer by ID for a specific user.
func (s *transferService) GetTransferByID(userID, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := s.db.Preload("FromAccount").Preload("ToAccount").
		Preload("OutTx").Preload("InTx").
		Where("id = ? AND user_id = ?", transferID, userID).
		First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transfer, nil
}

// DeleteTransfer removes a transfer and both generated transactions atomically.
func (s *transferService) DeleteTransfer(userID, transferID string) error {
	transfer, err := s.GetTransferByID(userID, transferID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if transfer.OutTxID != nil {
			if err := tx.Where("id = ? AND user_id = ?", *transfer.OutTxID, userID).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if transfer.InTxID != nil {
			if err := tx.Where("id = ? AND user_id = ?", *transfer.InTxID, userID).
				Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(&models.Transfer{}, "id = ?", transfer.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
