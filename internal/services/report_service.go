package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/logger"
	"hamyon/internal/models"
)

// reportService aggregates transactions into per-currency summaries,
// yearly breakdowns and account balances. Balances are always derived
// from transactions rather than stored on the account.
type reportService struct {
	db              *gorm.DB
	exchange        ExchangeServicer
	primaryCurrency string
}

// NewReportService creates a new ReportServicer. Totals across currencies
// are expressed in primaryCurrency.
func NewReportService(db *gorm.DB, exchange ExchangeServicer, primaryCurrency string) ReportServicer {
	return &reportService{
		db:              db,
		exchange:        exchange,
		primaryCurrency: primaryCurrency,
	}
}

type currencyTypeSum struct {
	Currency string
	Type     models.TransactionType
	Total    decimal.Decimal
}

// Summary computes income, expense and balance per currency over the
// filtered transaction set, plus a combined balance in the primary currency.
func (s *reportService) Summary(userID string, filter SummaryFilter) (*Summary, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("transactions.currency AS currency, transactions.type AS type, SUM(transactions.amount) AS total").
		Where("transactions.user_id = ?", userID)
	q = applyTransactionFilters(q, TransactionFilter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Search:   filter.Search,
	})

	var rows []currencyTypeSum
	if err := q.Group("transactions.currency, transactions.type").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byCurrency := make(map[string]*CurrencyTotals)
	for _, row := range rows {
		totals, ok := byCurrency[row.Currency]
		if !ok {
			totals = &CurrencyTotals{Currency: row.Currency}
			byCurrency[row.Currency] = totals
		}
		switch row.Type {
		case models.TransactionTypeIncome:
			totals.Income = totals.Income.Add(row.Total)
		case models.TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(row.Total)
		}
	}

	summary := &Summary{
		ByCurrency:      make([]CurrencyTotals, 0, len(byCurrency)),
		PrimaryCurrency: s.primaryCurrency,
	}
	for _, totals := range byCurrency {
		totals.Balance = totals.Income.Sub(totals.Expense)
		summary.ByCurrency = append(summary.ByCurrency, *totals)
	}
	// Primary currency first, the rest alphabetical.
	sort.Slice(summary.ByCurrency, func(i, j int) bool {
		a, b := summary.ByCurrency[i].Currency, summary.ByCurrency[j].Currency
		if a == s.primaryCurrency {
			return true
		}
		if b == s.primaryCurrency {
			return false
		}
		return a < b
	})

	for _, totals := range summary.ByCurrency {
		if totals.Currency == s.primaryCurrency {
			summary.TotalBalance = summary.TotalBalance.Add(totals.Balance)
			continue
		}
		converted, err := s.exchange.Convert(totals.Balance, totals.Currency, s.primaryCurrency, time.Time{})
		if err != nil {
			if isRateUnavailable(err) {
				// A currency with no stored rate contributes nothing to
				// the combined balance instead of failing the summary.
				logger.Get().Warnw("No exchange rate for summary conversion, skipping",
					"currency", totals.Currency, "primary", s.primaryCurrency)
				continue
			}
			return nil, err
		}
		summary.TotalBalance = summary.TotalBalance.Add(converted)
	}

	return summary, nil
}

type dateTypeAmount struct {
	Date   time.Time
	Type   models.TransactionType
	Amount decimal.Decimal
}

// YearlyBreakdown computes month-by-month income and expense totals for one
// year in one currency, plus the top expense categories of that year.
// All twelve months are present in the result even when empty.
func (s *reportService) YearlyBreakdown(userID string, year int, currency string) (*YearlyBreakdown, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var rows []dateTypeAmount
	if err := s.db.Model(&models.Transaction{}).
		Select("date, type, amount").
		Where("user_id = ? AND currency = ? AND date >= ? AND date < ?", userID, currency, start, end).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Bucketing by month in Go keeps the query portable across databases.
	breakdown := &YearlyBreakdown{
		Year:     year,
		Currency: currency,
		Months:   make([]MonthTotals, 12),
	}
	for i := range breakdown.Months {
		breakdown.Months[i].Month = fmt.Sprintf("%04d-%02d", year, i+1)
	}
	for _, row := range rows {
		bucket := &breakdown.Months[int(row.Date.Month())-1]
		switch row.Type {
		case models.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(row.Amount)
		case models.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(row.Amount)
		}
	}

	var categories []CategoryTotal
	if err := s.db.Model(&models.Transaction{}).
		Select("transactions.category_id AS category_id, categories.name AS name, SUM(transactions.amount) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.currency = ? AND transactions.type = ?", userID, currency, models.TransactionTypeExpense).
		Where("transactions.date >= ? AND transactions.date < ?", start, end).
		Group("transactions.category_id, categories.name").
		Order("total DESC").
		Limit(10).
		Scan(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	breakdown.TopExpenseCategories = categories

	return breakdown, nil
}

type accountTypeSum struct {
	AccountID string
	Type      models.TransactionType
	Total     decimal.Decimal
}

// AccountBalances computes the current balance of every account the user
// owns, in the account's own currency.
func (s *reportService) AccountBalances(userID string) ([]AccountBalance, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []accountTypeSum
	if err := s.db.Model(&models.Transaction{}).
		Select("account_id, type, SUM(amount) AS total").
		Where("user_id = ?", userID).
		Group("account_id, type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sums := make(map[string]decimal.Decimal, len(accounts))
	for _, row := range rows {
		switch row.Type {
		case models.TransactionTypeIncome:
			sums[row.AccountID] = sums[row.AccountID].Add(row.Total)
		case models.TransactionTypeExpense:
			sums[row.AccountID] = sums[row.AccountID].Sub(row.Total)
		}
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, AccountBalance{
			AccountID: account.ID,
			Name:      account.Name,
			Type:      account.Type,
			Currency:  account.Currency,
			Balance:   sums[account.ID],
		})
	}
	return balances, nil
}

// isRateUnavailable reports whether err carries the missing-rate error code.
func isRateUnavailable(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrRateUnavailable.Code
}
