package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/pagination"
	"hamyon/internal/services"
)

// TransferHandler handles transfer-related requests
type TransferHandler struct {
	transferService services.TransferServicer
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService services.TransferServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// TransferRequest represents the create transfer payload. AmountTo is
// required when the two accounts hold different currencies and is ignored
// when they share one. Rate is informational only.
type TransferRequest struct {
	FromAccountID string           `json:"from_account_id" binding:"required,uuid"`
	ToAccountID   string           `json:"to_account_id" binding:"required,uuid"`
	AmountFrom    decimal.Decimal  `json:"amount_from" binding:"required"`
	AmountTo      *decimal.Decimal `json:"amount_to"`
	Rate          *decimal.Decimal `json:"rate"`
	Date          time.Time        `json:"date" binding:"omitempty"`
	Note          string           `json:"note" binding:"max=200"`
}

// CreateTransfer handles transfer creation
// @Summary     Create a transfer
// @Description Move funds between two of the user's accounts
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer data"
// @Success     201 {object} models.Transfer "Transfer created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /transfers [post]
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transfer, err := h.transferService.CreateTransfer(userID, services.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		AmountFrom:    req.AmountFrom,
		AmountTo:      req.AmountTo,
		Rate:          req.Rate,
		Date:          req.Date,
		Note:          req.Note,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transfer": transfer})
}

// GetTransfers lists the user's transfers
// @Summary     List transfers
// @Description Get a paginated list of the user's transfers, newest first
// @Tags        transfers
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transfer] "Transfers"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transfers [get]
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transfers, err := h.transferService.GetUserTransfers(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transfers)
}

// GetTransfer returns one transfer with both generated transactions
// @Summary     Get a transfer
// @Description Get a single transfer by ID including its two transaction legs
// @Tags        transfers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transfer ID"
// @Success     200 {object} models.Transfer "Transfer"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transfer not found"
// @Router      /transfers/{id} [get]
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transferID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transfer, err := h.transferService.GetTransferByID(userID, transferID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfer": transfer})
}

// DeleteTransfer deletes a transfer and both its transactions
// @Summary     Delete a transfer
// @Description Delete a transfer together with its two generated transactions
// @Tags        transfers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transfer ID"
// @Success     204 "Transfer deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transfer not found"
// @Router      /transfers/{id} [delete]
func (h *TransferHandler) DeleteTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transferID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transferService.DeleteTransfer(userID, transferID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
