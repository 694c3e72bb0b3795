package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/model"
)

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransactionService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     TransactionInput
		wantErr   bool
		errFields []string
	}{
		{
			name:  "valid income",
			input: TransactionInput{Name: "Salary", Value: "1000.50"},
		},
		{
			name:  "valid expense with description",
			input: TransactionInput{Name: "Rent", Value: "-850.00", Description: "July"},
		},
		{
			name:      "missing name",
			input:     TransactionInput{Name: "", Value: "10.00"},
			wantErr:   true,
			errFields: []string{"name"},
		},
		{
			name:      "missing value",
			input:     TransactionInput{Name: "Salary", Value: ""},
			wantErr:   true,
			errFields: []string{"value"},
		},
		{
			name:      "non numeric value",
			input:     TransactionInput{Name: "Salary", Value: "abc"},
			wantErr:   true,
			errFields: []string{"value"},
		},
		{
			name:      "too many decimal places",
			input:     TransactionInput{Name: "Salary", Value: "10.505"},
			wantErr:   true,
			errFields: []string{"value"},
		},
		{
			name:      "magnitude out of range",
			input:     TransactionInput{Name: "Salary", Value: "100000000"},
			wantErr:   true,
			errFields: []string{"value"},
		},
		{
			name:  "largest representable value",
			input: TransactionInput{Name: "Windfall", Value: "99999999.99"},
		},
		{
			name:      "both fields invalid reported together",
			input:     TransactionInput{Name: "", Value: "nope"},
			wantErr:   true,
			errFields: []string{"name", "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTransactionRepository)
			svc := NewTransactionService(repo)

			if !tt.wantErr {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)
			}

			txn, err := svc.Create(context.Background(), 7, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				ve, ok := apperrors.AsValidation(err)
				require.True(t, ok, "expected a validation error")
				gotFields := make([]string, 0, len(ve.Fields))
				for _, f := range ve.Fields {
					gotFields = append(gotFields, f.Field)
				}
				assert.ElementsMatch(t, tt.errFields, gotFields)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, uint(7), txn.UserID, "owner is always the acting principal")
			assert.True(t, txn.Value.Equal(dec(tt.input.Value)))
			repo.AssertExpectations(t)
		})
	}
}

func TestTransactionService_CreateOwnerForced(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := NewTransactionService(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
		return txn.UserID == 42
	})).Return(nil)

	txn, err := svc.Create(context.Background(), 42, TransactionInput{Name: "Salary", Value: "1.00"})

	require.NoError(t, err)
	assert.Equal(t, uint(42), txn.UserID)
	repo.AssertExpectations(t)
}

func TestTransactionService_Update(t *testing.T) {
	owned := func() *model.Transaction {
		return &model.Transaction{
			ID:        10,
			UserID:    7,
			Name:      "Old name",
			Value:     dec("5.00"),
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("missing id is not found", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Update(context.Background(), 7, 99, TransactionInput{Name: "x", Value: "1.00"})

		assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign row is forbidden, not not-found", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		foreign := owned()
		foreign.UserID = 8
		repo.On("FindByID", mock.Anything, uint(10)).Return(foreign, nil)

		_, err := svc.Update(context.Background(), 7, 10, TransactionInput{Name: "x", Value: "1.00"})

		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
		assert.NotErrorIs(t, err, apperrors.ErrTransactionNotFound)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner update succeeds without touching owner or created_at", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(10)).Return(owned(), nil)
		repo.On("UpdateFields", mock.Anything, uint(10), mock.MatchedBy(func(fields map[string]interface{}) bool {
			_, hasOwner := fields["user_id"]
			_, hasCreatedAt := fields["created_at"]
			return !hasOwner && !hasCreatedAt
		})).Return(nil)

		txn, err := svc.Update(context.Background(), 7, 10, TransactionInput{Name: "New name", Value: "-3.25"})

		require.NoError(t, err)
		assert.Equal(t, "New name", txn.Name)
		assert.True(t, txn.Value.Equal(dec("-3.25")))
		assert.Equal(t, uint(7), txn.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("owner update with invalid input is rejected before mutation", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(10)).Return(owned(), nil)

		_, err := svc.Update(context.Background(), 7, 10, TransactionInput{Name: "", Value: "1.00"})

		_, ok := apperrors.AsValidation(err)
		assert.True(t, ok)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionService_Delete(t *testing.T) {
	t.Run("missing id is not found", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		err := svc.Delete(context.Background(), 7, 99)

		assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("foreign row is forbidden", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(10)).Return(&model.Transaction{ID: 10, UserID: 8}, nil)

		err := svc.Delete(context.Background(), 7, 10)

		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("FindByID", mock.Anything, uint(10)).Return(&model.Transaction{ID: 10, UserID: 7}, nil)
		repo.On("Delete", mock.Anything, uint(10)).Return(nil)

		err := svc.Delete(context.Background(), 7, 10)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestTransactionService_Summarize(t *testing.T) {
	t.Run("exact decimal totals", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("ListByUser", mock.Anything, uint(7)).Return([]model.Transaction{
			{UserID: 7, Value: dec("1000.50")},
			{UserID: 7, Value: dec("-250.75")},
		}, nil)

		summary, err := svc.Summarize(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, summary.PositiveTotal.Equal(dec("1000.50")), "got %s", summary.PositiveTotal)
		assert.True(t, summary.NegativeTotal.Equal(dec("-250.75")), "got %s", summary.NegativeTotal)
		assert.True(t, summary.Balance.Equal(dec("749.75")), "got %s", summary.Balance)
	})

	t.Run("zero values count toward neither total", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("ListByUser", mock.Anything, uint(7)).Return([]model.Transaction{
			{UserID: 7, Value: dec("0.00")},
			{UserID: 7, Value: dec("10.00")},
		}, nil)

		summary, err := svc.Summarize(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, summary.PositiveTotal.Equal(dec("10.00")))
		assert.True(t, summary.NegativeTotal.IsZero())
		assert.True(t, summary.Balance.Equal(dec("10.00")))
	})

	t.Run("empty ledger yields zeros", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		repo.On("ListByUser", mock.Anything, uint(7)).Return([]model.Transaction{}, nil)

		summary, err := svc.Summarize(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, summary.PositiveTotal.IsZero())
		assert.True(t, summary.NegativeTotal.IsZero())
		assert.True(t, summary.Balance.IsZero())
	})

	t.Run("many cents sum without drift", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		svc := NewTransactionService(repo)
		txns := make([]model.Transaction, 0, 1000)
		for i := 0; i < 1000; i++ {
			txns = append(txns, model.Transaction{UserID: 7, Value: dec("0.10")})
		}
		repo.On("ListByUser", mock.Anything, uint(7)).Return(txns, nil)

		summary, err := svc.Summarize(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, summary.Balance.Equal(dec("100.00")), "got %s", summary.Balance)
	})
}

func TestTransactionService_ListScopedToUser(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := NewTransactionService(repo)
	repo.On("ListByUser", mock.Anything, uint(7)).Return([]model.Transaction{
		{ID: 2, UserID: 7}, {ID: 1, UserID: 7},
	}, nil)

	txns, err := svc.List(context.Background(), 7)

	require.NoError(t, err)
	for _, txn := range txns {
		assert.Equal(t, uint(7), txn.UserID)
	}
	repo.AssertCalled(t, "ListByUser", mock.Anything, uint(7))
}
