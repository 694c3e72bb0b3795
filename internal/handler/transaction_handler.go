package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"fintrack/internal/model"
	"fintrack/internal/service"
)

// TransactionHandler handles ledger endpoints.
type TransactionHandler struct {
	transactions service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactions service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// TransactionRequest represents the editable fields of a transaction. Value is
// decimal text; positive for income, negative for expense.
type TransactionRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description"`
}

// TransactionResponse represents a transaction with its derived direction.
type TransactionResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Value       decimal.Decimal `json:"value"`
	IsIncome    bool            `json:"is_income"`
	IsExpense   bool            `json:"is_expense"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toTransactionResponse(txn *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID,
		Name:        txn.Name,
		Description: txn.Description,
		Value:       txn.Value,
		IsIncome:    txn.IsIncome(),
		IsExpense:   txn.IsExpense(),
		CreatedAt:   txn.CreatedAt,
	}
}

func (h *TransactionHandler) input(req TransactionRequest) service.TransactionInput {
	return service.TransactionInput{
		Name:        req.Name,
		Value:       req.Value,
		Description: req.Description,
	}
}

// List godoc
// @Summary List the caller's transactions, newest first
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TransactionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	txns, err := h.transactions.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}

	resp := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		resp = append(resp, toTransactionResponse(&txns[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a transaction owned by the caller
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction fields"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	txn, err := h.transactions.Create(c.Request().Context(), claims.UserID, h.input(req))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// Update godoc
// @Summary Update an owned transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction fields"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	txn, err := h.transactions.Update(c.Request().Context(), claims.UserID, uint(id), h.input(req))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// Delete godoc
// @Summary Delete an owned transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204 {object} nil
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.transactions.Delete(c.Request().Context(), claims.UserID, uint(id)); err != nil {
		return domainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Summary godoc
// @Summary Income total, expense total and balance over the caller's ledger
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Summary
// @Failure 401 {object} errors.ErrorResponse
// @Router /summary [get]
func (h *TransactionHandler) Summary(c echo.Context) error {
	claims, err := principal(c)
	if err != nil {
		return err
	}

	summary, err := h.transactions.Summarize(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
