package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/logger"
	"hamyon/internal/models"
)

// cbuService fetches daily exchange rates from the Central Bank of
// Uzbekistan JSON archive and stores the USD rate.
type cbuService struct {
	client   *http.Client
	url      string
	quote    string
	exchange ExchangeServicer
}

// NewCBUService creates a RateUpdater that pulls from the given feed URL
// and stores USD rates against the quote currency.
func NewCBUService(url, quote string, timeout time.Duration, exchange ExchangeServicer) RateUpdater {
	return &cbuService{
		client:   &http.Client{Timeout: timeout},
		url:      url,
		quote:    quote,
		exchange: exchange,
	}
}

// cbuRate is one entry of the CBU feed. Rate uses a comma as the decimal
// separator and Date is formatted as DD.MM.YYYY.
type cbuRate struct {
	Ccy  string `json:"Ccy"`
	Rate string `json:"Rate"`
	Date string `json:"Date"`
}

// UpdateUSDRate fetches the current feed, extracts the USD entry and
// upserts it for the feed's publication date. Re-running on the same day
// overwrites the stored value.
func (s *cbuService) UpdateUSDRate(ctx context.Context) (*models.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateSource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrRateSource,
			fmt.Errorf("rate feed returned status %d", resp.StatusCode))
	}

	var feed []cbuRate
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateSource, err)
	}

	entry, err := findCurrency(feed, "USD")
	if err != nil {
		return nil, err
	}

	rate, err := parseFeedRate(entry.Rate)
	if err != nil {
		return nil, err
	}
	date, err := parseFeedDate(entry.Date)
	if err != nil {
		return nil, err
	}

	stored, err := s.exchange.UpsertRate("USD", s.quote, date, rate)
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("Exchange rate updated",
		"base", stored.Base, "quote", stored.Quote,
		"rate", stored.Rate.String(), "date", stored.Date.Format("2006-01-02"))
	return stored, nil
}

func findCurrency(feed []cbuRate, ccy string) (*cbuRate, error) {
	for i := range feed {
		if feed[i].Ccy == ccy {
			return &feed[i], nil
		}
	}
	return nil, apperrors.Wrap(apperrors.ErrRateSource,
		fmt.Errorf("currency %s not present in rate feed", ccy))
}

// parseFeedRate parses a feed rate value, accepting both "12 650,42" and
// "12650.42" style numbers.
func parseFeedRate(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	rate, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, apperrors.Wrap(apperrors.ErrRateSource,
			fmt.Errorf("unparseable rate value %q: %w", raw, err))
	}
	return rate, nil
}

// parseFeedDate parses the feed's DD.MM.YYYY publication date.
func parseFeedDate(raw string) (time.Time, error) {
	date, err := time.Parse("02.01.2006", raw)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrRateSource,
			fmt.Errorf("unparseable rate date %q: %w", raw, err))
	}
	return date, nil
}
