package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const maxNameLength = 100

// maxMagnitude bounds transaction values to what a decimal(10,2) column holds:
// eight integer digits, so |value| < 10^8.
var maxMagnitude = decimal.New(1, 8)

// TransactionInput carries the user-editable fields of a transaction. Value is
// the raw decimal text from the form; it is parsed and validated here so the
// handler stays free of money semantics.
type TransactionInput struct {
	Name        string
	Value       string
	Description string
}

// Summary is the aggregate over a user's full ledger, recomputed on demand.
type Summary struct {
	PositiveTotal decimal.Decimal `json:"positive_total"`
	NegativeTotal decimal.Decimal `json:"negative_total"`
	Balance       decimal.Decimal `json:"balance"`
}

// TransactionService exposes the ownership-scoped ledger operations. Every
// operation is scoped to the acting user; a transaction is never visible or
// mutable outside its owner.
type TransactionService interface {
	List(ctx context.Context, userID uint) ([]model.Transaction, error)
	Create(ctx context.Context, userID uint, input TransactionInput) (*model.Transaction, error)
	Update(ctx context.Context, userID, id uint, input TransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id uint) error
	Summarize(ctx context.Context, userID uint) (*Summary, error)
}

type transactionService struct {
	repo repository.TransactionRepository
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

// owns is the single ownership predicate; it runs before any mutation.
func owns(userID uint, txn *model.Transaction) bool {
	return txn.UserID == userID
}

// List returns the user's transactions newest first.
func (s *transactionService) List(ctx context.Context, userID uint) ([]model.Transaction, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create validates input and persists a new transaction owned by userID. The
// owner is always the acting principal, never taken from the payload.
func (s *transactionService) Create(ctx context.Context, userID uint, input TransactionInput) (*model.Transaction, error) {
	value, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Value:       value,
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

// Update applies validated changes to an owned transaction. Owner and creation
// timestamp are never written.
func (s *transactionService) Update(ctx context.Context, userID, id uint, input TransactionInput) (*model.Transaction, error) {
	txn, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	value, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
		"value":       value,
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	txn.Name = input.Name
	txn.Description = input.Description
	txn.Value = value
	return txn, nil
}

// Delete removes an owned transaction. A missing id and a foreign id stay
// distinguishable outcomes.
func (s *transactionService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Summarize recomputes the income total, expense total and balance over the
// user's full ledger using exact decimal arithmetic. An empty ledger yields
// all zeros.
func (s *transactionService) Summarize(ctx context.Context, userID uint) (*Summary, error) {
	txns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		PositiveTotal: decimal.Zero,
		NegativeTotal: decimal.Zero,
	}
	for i := range txns {
		switch {
		case txns[i].Value.IsPositive():
			summary.PositiveTotal = summary.PositiveTotal.Add(txns[i].Value)
		case txns[i].Value.IsNegative():
			summary.NegativeTotal = summary.NegativeTotal.Add(txns[i].Value)
		}
	}
	summary.Balance = summary.PositiveTotal.Add(summary.NegativeTotal)
	return summary, nil
}

// findOwned resolves id and enforces ownership without touching storage
// further on the unauthorized path.
func (s *transactionService) findOwned(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	if !owns(userID, txn) {
		return nil, apperrors.ErrNotOwner
	}
	return txn, nil
}

// validateInput checks the editable fields and parses the value. All field
// problems are reported together.
func validateInput(input TransactionInput) (decimal.Decimal, error) {
	ve := &apperrors.ValidationError{}

	if input.Name == "" {
		ve.Add("name", "name is required")
	} else if len(input.Name) > maxNameLength {
		ve.Add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	value, err := parseValue(input.Value)
	if err != nil {
		ve.Add("value", err.Error())
	}

	if ve.HasErrors() {
		return decimal.Decimal{}, ve
	}
	return value, nil
}

// parseValue parses a signed fixed-point amount with at most two fractional
// digits and magnitude below 10^8. Excess precision is rejected, not rounded.
func parseValue(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, errors.New("value is required")
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.New("value must be a decimal number")
	}
	if value.Exponent() < -2 {
		return decimal.Decimal{}, errors.New("value must have at most two decimal places")
	}
	if value.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Decimal{}, errors.New("value is out of range")
	}
	return value, nil
}
