package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hamyon/internal/errors"
	"hamyon/internal/models"
	"hamyon/internal/pagination"
	"hamyon/internal/services"
)

// AccountHandler handles account-related requests
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountRequest represents the create/update account payload. Card kind,
// bank name and last4 are required only for card accounts; the service
// enforces that.
type AccountRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Type     string `json:"type" binding:"required,account_type"`
	Currency string `json:"currency" binding:"required,iso4217"`
	CardKind string `json:"card_kind" binding:"omitempty,card_kind"`
	BankName string `json:"bank_name" binding:"omitempty,max=80"`
	Last4    string `json:"last4" binding:"omitempty,last4"`
}

func (r AccountRequest) toInput() services.AccountInput {
	return services.AccountInput{
		Name:     r.Name,
		Type:     models.AccountType(r.Type),
		Currency: r.Currency,
		CardKind: models.CardKind(r.CardKind),
		BankName: r.BankName,
		Last4:    r.Last4,
	}
}

// CreateAccount handles account creation
// @Summary     Create an account
// @Description Create a new cash or card account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AccountRequest true "Account data"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts lists the user's accounts
// @Summary     List accounts
// @Description Get a paginated list of the user's accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Account] "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
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

	accounts, err := h.accountService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccount returns one account
// @Summary     Get an account
// @Description Get a single account by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount updates an account
// @Summary     Update an account
// @Description Update an existing account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       request body AccountRequest true "Account data"
// @Success     200 {object} models.Account "Account updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(userID, accountID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount deletes an account
// @Summary     Delete an account
// @Description Delete an account together with its transactions
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     204 "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	if err := h.accountService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
