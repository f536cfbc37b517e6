package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
	"hamyon/internal/services"
	"hamyon/internal/uuid"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create/update transaction payload.
// Currency is optional and defaults to the account's currency.
type TransactionRequest struct {
	AccountID  string          `json:"account_id" binding:"required,uuid"`
	CategoryID string          `json:"category_id" binding:"required,uuid"`
	Type       string          `json:"type" binding:"required,transaction_type"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency" binding:"omitempty,iso4217"`
	Date       time.Time       `json:"date" binding:"omitempty"`
	Note       string          `json:"note" binding:"max=200"`
}

func (r TransactionRequest) toInput() services.TransactionInput {
	return services.TransactionInput{
		AccountID:  r.AccountID,
		CategoryID: r.CategoryID,
		Type:       models.TransactionType(r.Type),
		Amount:     r.Amount,
		Currency:   r.Currency,
		Date:       r.Date,
		Note:       r.Note,
	}
}

// CommentRequest represents the add comment payload
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// parseTransactionFilter builds a TransactionFilter from query parameters.
func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	fromDate, err := parseDateQuery(c, "from_date")
	if err != nil {
		return filter, err
	}
	filter.FromDate = fromDate

	toDate, err := parseDateQuery(c, "to_date")
	if err != nil {
		return filter, err
	}
	filter.ToDate = toDate

	switch txType := c.Query("type"); txType {
	case "":
	case "income", "expense":
		t := models.TransactionType(txType)
		filter.Type = &t
	default:
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	if categoryID := c.Query("category_id"); categoryID != "" {
		if !uuid.IsValid(categoryID) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id")
		}
		filter.CategoryID = &categoryID
	}

	if accountID := c.Query("account_id"); accountID != "" {
		if !uuid.IsValid(accountID) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid account_id")
		}
		filter.AccountID = &accountID
	}

	filter.Search = c.Query("search")
	return filter, nil
}

// CreateTransaction handles transaction creation
// @Summary     Create a transaction
// @Description Record an income or expense on one of the user's accounts
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction data"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Get a paginated list of transactions with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date query string false "End date (YYYY-MM-DD)"
// @Param       type query string false "Filter by type (income or expense)"
// @Param       category_id query string false "Filter by category"
// @Param       account_id query string false "Filter by account"
// @Param       search query string false "Match against note or category name"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetAccountTransactions lists transactions of a single account
// @Summary     List account transactions
// @Description Get a paginated list of one account's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetAccountTransactions(userID, accountID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Description Get a single transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction updates a transaction
// @Summary     Update a transaction
// @Description Update an existing transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction data"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddComment attaches a comment to a transaction
// @Summary     Comment on a transaction
// @Description Add a free-text comment to one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body CommentRequest true "Comment text"
// @Success     201 {object} models.Comment "Comment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/comments [post]
func (h *TransactionHandler) AddComment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	comment, err := h.transactionService.AddComment(userID, transactionID, req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments lists a transaction's comments
// @Summary     List transaction comments
// @Description Get the comments on a transaction, oldest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Comment] "Comments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/comments [get]
func (h *TransactionHandler) GetComments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	comments, err := h.transactionService.GetComments(userID, transactionID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
