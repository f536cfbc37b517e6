package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/pagination"
	"hamyon/internal/services"
)

// RateHandler handles exchange rate requests
type RateHandler struct {
	exchangeService services.ExchangeServicer
	rateUpdater     services.RateUpdater
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(exchangeService services.ExchangeServicer, rateUpdater services.RateUpdater) *RateHandler {
	return &RateHandler{exchangeService: exchangeService, rateUpdater: rateUpdater}
}

// GetRates lists stored rates for a pair
// @Summary     List exchange rates
// @Description Get the stored daily rates for a currency pair, newest first
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Param       base query string false "Base currency (default USD)"
// @Param       quote query string false "Quote currency (default UZS)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.ExchangeRate] "Rates"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /rates [get]
func (h *RateHandler) GetRates(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	base := c.DefaultQuery("base", "USD")
	quote := c.DefaultQuery("quote", "UZS")

	rates, err := h.exchangeService.ListRates(base, quote, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rates)
}

// GetLatestRate returns the newest stored rate for a pair
// @Summary     Get latest exchange rate
// @Description Get the most recently stored rate for a currency pair
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Param       base query string false "Base currency (default USD)"
// @Param       quote query string false "Quote currency (default UZS)"
// @Success     200 {object} models.ExchangeRate "Rate"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No rate stored"
// @Router      /rates/latest [get]
func (h *RateHandler) GetLatestRate(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	base := c.DefaultQuery("base", "USD")
	quote := c.DefaultQuery("quote", "UZS")

	rate, err := h.exchangeService.LatestRate(base, quote)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

// SyncRates pulls the current USD rate from the remote feed
// @Summary     Sync exchange rates
// @Description Fetch the current USD rate from the central bank feed and store it
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.ExchangeRate "Stored rate"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Rate source unavailable"
// @Router      /rates/sync [post]
func (h *RateHandler) SyncRates(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	rate, err := h.rateUpdater.UpdateUSDRate(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}
