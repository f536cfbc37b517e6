package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hamyon/internal/models"
	"hamyon/internal/pagination"
	"hamyon/internal/testutil"
)

func newTransferTestServices(db *gorm.DB) (TransferServicer, AccountServicer) {
	acctSvc := NewAccountService(db)
	catSvc := NewCategoryService(db)
	return NewTransferService(db, acctSvc, catSvc), acctSvc
}

func TestCreateTransfer(t *testing.T) {
	t.Run("same_currency_creates_linked_pair", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCardAccount(t, db, user.ID, "UZS")

		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("150000"),
			Note:          "monthly top-up",
		})
		testutil.AssertNoError(t, err)

		if transfer.OutTxID == nil || transfer.InTxID == nil {
			t.Fatal("expected both transaction legs to be linked")
		}

		var outTx, inTx models.Transaction
		testutil.AssertNoError(t, db.First(&outTx, "id = ?", *transfer.OutTxID).Error)
		testutil.AssertNoError(t, db.First(&inTx, "id = ?", *transfer.InTxID).Error)

		if outTx.Type != models.TransactionTypeExpense || outTx.AccountID != from.ID {
			t.Errorf("expected expense leg on source account, got %s on %s", outTx.Type, outTx.AccountID)
		}
		if inTx.Type != models.TransactionTypeIncome || inTx.AccountID != to.ID {
			t.Errorf("expected income leg on destination account, got %s on %s", inTx.Type, inTx.AccountID)
		}
		testutil.AssertDecimalEqual(t, "150000", outTx.Amount)
		testutil.AssertDecimalEqual(t, "150000", inTx.Amount)
		if outTx.Note != "monthly top-up" || inTx.Note != "monthly top-up" {
			t.Error("expected the note copied onto both legs")
		}
	})

	t.Run("same_currency_ignores_supplied_amount_to_and_rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		amountTo := decimal.RequireFromString("999")
		rate := decimal.RequireFromString("2")
		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("1000"),
			AmountTo:      &amountTo,
			Rate:          &rate,
		})
		testutil.AssertNoError(t, err)

		if transfer.AmountTo == nil {
			t.Fatal("expected AmountTo to be set")
		}
		testutil.AssertDecimalEqual(t, "1000", *transfer.AmountTo)
		if transfer.Rate != nil {
			t.Errorf("expected no rate on a same-currency transfer, got %s", transfer.Rate)
		}
	})

	t.Run("cross_currency_uses_explicit_amount_to", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "USD")
		to := testutil.CreateTestCardAccount(t, db, user.ID, "UZS")

		amountTo := decimal.RequireFromString("1265000")
		rate := decimal.RequireFromString("12650")
		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("100"),
			AmountTo:      &amountTo,
			Rate:          &rate,
		})
		testutil.AssertNoError(t, err)

		var outTx, inTx models.Transaction
		testutil.AssertNoError(t, db.First(&outTx, "id = ?", *transfer.OutTxID).Error)
		testutil.AssertNoError(t, db.First(&inTx, "id = ?", *transfer.InTxID).Error)

		testutil.AssertDecimalEqual(t, "100", outTx.Amount)
		if outTx.Currency != "USD" {
			t.Errorf("expected USD on the source leg, got %s", outTx.Currency)
		}
		testutil.AssertDecimalEqual(t, "1265000", inTx.Amount)
		if inTx.Currency != "UZS" {
			t.Errorf("expected UZS on the destination leg, got %s", inTx.Currency)
		}
	})

	t.Run("cross_currency_without_amount_to", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "USD")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("100"),
		})
		testutil.AssertAppError(t, err, "AMOUNT_TO_REQUIRED")

		// Rejected before anything is written.
		var count int64
		testutil.AssertNoError(t, db.Model(&models.Transfer{}).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no transfers written, got %d", count)
		}
		testutil.AssertNoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected no transactions written, got %d", count)
		}
	})

	t.Run("same_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: account.ID,
			ToAccountID:   account.ID,
			AmountFrom:    decimal.RequireFromString("100"),
		})
		testutil.AssertAppError(t, err, "SAME_ACCOUNT_TRANSFER")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.Zero,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user1.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user2.ID, "UZS")

		_, err := svc.CreateTransfer(user1.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("100"),
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("transfer_categories_are_reused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		for i := 0; i < 3; i++ {
			_, err := svc.CreateTransfer(user.ID, TransferInput{
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				AmountFrom:    decimal.RequireFromString("100"),
			})
			testutil.AssertNoError(t, err)
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Category{}).
			Where("user_id = ? AND well_known_key IS NOT NULL", user.ID).
			Count(&count).Error)
		if count != 2 {
			t.Errorf("expected exactly 2 auto-created transfer categories, got %d", count)
		}
	})

	t.Run("failure_rolls_back_everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		// Fail the insert of the second transaction leg so the transfer,
		// the categories, and the first leg must all be rolled back.
		inserted := 0
		err := db.Callback().Create().Before("gorm:create").
			Register("fail_second_transaction_insert", func(tx *gorm.DB) {
				if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "transactions" {
					inserted++
					if inserted == 2 {
						tx.AddError(errors.New("simulated insert failure"))
					}
				}
			})
		testutil.AssertNoError(t, err)
		defer db.Callback().Create().Remove("fail_second_transaction_insert")

		_, err = svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			AmountFrom:    decimal.RequireFromString("100"),
		})
		if err == nil {
			t.Fatal("expected the transfer to fail")
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Transfer{}).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected transfer rolled back, found %d rows", count)
		}
		testutil.AssertNoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
		if count != 0 {
			t.Errorf("expected transactions rolled back, found %d rows", count)
		}
	})
}

func TestGetUserTransfers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newTransferTestServices(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
	to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
	otherFrom := testutil.CreateTestCashAccount(t, db, other.ID, "UZS")
	otherTo := testutil.CreateTestCashAccount(t, db, other.ID, "UZS")

	for i := 0; i < 2; i++ {
		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID, ToAccountID: to.ID,
			AmountFrom: decimal.RequireFromString("100"),
		})
		testutil.AssertNoError(t, err)
	}
	_, err := svc.CreateTransfer(other.ID, TransferInput{
		FromAccountID: otherFrom.ID, ToAccountID: otherTo.ID,
		AmountFrom: decimal.RequireFromString("50"),
	})
	testutil.AssertNoError(t, err)

	page, err := svc.GetUserTransfers(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 transfers for the user, got %d", page.TotalItems)
	}
}

func TestGetTransferByID(t *testing.T) {
	t.Run("preloads_legs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		created, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID, ToAccountID: to.ID,
			AmountFrom: decimal.RequireFromString("100"),
		})
		testutil.AssertNoError(t, err)

		transfer, err := svc.GetTransferByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if transfer.OutTx == nil || transfer.InTx == nil {
			t.Fatal("expected both legs preloaded")
		}
		if transfer.FromAccount.ID != from.ID {
			t.Error("expected source account preloaded")
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newTransferTestServices(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
		to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

		created, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID, ToAccountID: to.ID,
			AmountFrom: decimal.RequireFromString("100"),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.GetTransferByID(other.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSFER_NOT_FOUND")
	})
}

func TestDeleteTransfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newTransferTestServices(db)
	user := testutil.CreateTestUser(t, db)
	from := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")
	to := testutil.CreateTestCashAccount(t, db, user.ID, "UZS")

	created, err := svc.CreateTransfer(user.ID, TransferInput{
		FromAccountID: from.ID, ToAccountID: to.ID,
		AmountFrom: decimal.RequireFromString("100"),
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteTransfer(user.ID, created.ID))

	var count int64
	testutil.AssertNoError(t, db.Model(&models.Transfer{}).Count(&count).Error)
	if count != 0 {
		t.Errorf("expected transfer deleted, found %d rows", count)
	}
	testutil.AssertNoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	if count != 0 {
		t.Errorf("expected both legs deleted, found %d rows", count)
	}
}
