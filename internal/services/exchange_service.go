package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
)

var rateOne = decimal.NewFromInt(1)

// exchangeService resolves exchange rates from the stored daily rate table
// and converts amounts between currencies. Lookups are not cached: rates
// change once a day and the table stays small, so every call re-queries
// the store.
type exchangeService struct {
	db *gorm.DB
}

// NewExchangeService creates a new ExchangeServicer.
func NewExchangeService(db *gorm.DB) ExchangeServicer {
	return &exchangeService{db: db}
}

// GetRate returns the rate for converting base into quote as of the given
// date (zero means today). Identical currencies short-circuit to 1 without
// touching the store. Otherwise lookups work at calendar-day granularity:
// the single most recent stored rate dated on or before asOf's day wins.
func (s *exchangeService) GetRate(base, quote string, asOf time.Time) (decimal.Decimal, error) {
	if base == quote {
		return rateOne, nil
	}

	if asOf.IsZero() {
		asOf = today()
	} else {
		asOf = civilDay(asOf)
	}

	var rate models.ExchangeRate
	err := s.db.Where("base = ? AND quote = ? AND date <= ?", base, quote, asOf).
		Order("date DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrRateUnavailable,
				"no exchange rate stored for "+base+"->"+quote)
		}
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return rate.Rate, nil
}

// Convert multiplies amount by the resolved rate and rounds half-up to
// 2 decimal places.
func (s *exchangeService) Convert(amount decimal.Decimal, base, quote string, asOf time.Time) (decimal.Decimal, error) {
	rate, err := s.GetRate(base, quote, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// LatestRate returns the newest stored rate for the pair regardless of date.
func (s *exchangeService) LatestRate(base, quote string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := s.db.Where("base = ? AND quote = ?", base, quote).
		Order("date DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRateUnavailable
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rate, nil
}

// ListRates returns the stored rates for a pair, newest first.
func (s *exchangeService) ListRates(base, quote string, page pagination.PageRequest) (*pagination.PageResponse[models.ExchangeRate], error) {
	page.Defaults()

	q := s.db.Model(&models.ExchangeRate{}).Where("base = ? AND quote = ?", base, quote)

	var totalItems int64
	if err := q.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rates []models.ExchangeRate
	if err := q.Scopes(pagination.Paginate(page)).Order("date DESC").Find(&rates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rates, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpsertRate stores a rate for (base, quote, date) in a single statement,
// overwriting the rate when a row for the key already exists.
func (s *exchangeService) UpsertRate(base, quote string, date time.Time, rate decimal.Decimal) (*models.ExchangeRate, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rate must be greater than zero")
	}

	row := &models.ExchangeRate{
		Base:  base,
		Quote: quote,
		Date:  civilDay(date),
		Rate:  rate,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base"}, {Name: "quote"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so callers always see the persisted row, not an insert attempt
	// that was turned into an update.
	var stored models.ExchangeRate
	if err := s.db.Where("base = ? AND quote = ? AND date = ?", base, quote, row.Date).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stored, nil
}

// today returns the current calendar date anchored at midnight UTC.
func today() time.Time {
	return civilDay(time.Now())
}

// civilDay reanchors t's calendar date (as seen in t's own location) to
// midnight UTC. Rate rows store dates this way, so both sides of the
// date <= asOf comparison share one convention regardless of the host
// timezone.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
