package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/services"
)

// ReportHandler handles aggregation and reporting requests
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSummary returns per-currency totals over a filtered transaction set
// @Summary     Get summary
// @Description Get income, expense and balance per currency, plus a combined balance in the primary currency
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Param       search query string false "Match against note or category name"
// @Success     200 {object} services.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.SummaryFilter
	filter.FromDate, err = parseDateQuery(c, "from_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.ToDate, err = parseDateQuery(c, "to_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.Search = c.Query("search")

	summary, err := h.reportService.Summary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetYearlyBreakdown returns monthly totals for one year and currency
// @Summary     Get yearly breakdown
// @Description Get month-by-month income and expense totals for one year in one currency, with top expense categories
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (defaults to the current year)"
// @Param       currency query string true "Currency code"
// @Success     200 {object} services.YearlyBreakdown "Breakdown"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/yearly [get]
func (h *ReportHandler) GetYearlyBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year < 1970 || year > 9999 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
			return
		}
	}

	currency := c.Query("currency")
	if currency == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency is required"))
		return
	}

	breakdown, err := h.reportService.YearlyBreakdown(userID, year, currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

// GetAccountBalances returns the computed balance of every account
// @Summary     Get account balances
// @Description Get the current balance of each account, derived from its transactions
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} []services.AccountBalance "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/balances [get]
func (h *ReportHandler) GetAccountBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.reportService.AccountBalances(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}
