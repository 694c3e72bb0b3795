package repository

import (
	"context"

	"gorm.io/gorm"

	"fintrack/internal/model"
)

// TransactionRepository defines transaction persistence operations. Listing is
// always scoped to a single user; lookups by id are unscoped so the service
// layer can distinguish a missing row from a foreign one.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds a GORM-backed repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListByUser returns the user's transactions newest first, ties broken by id
// so the order is stable.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// UpdateFields applies a column map so callers control exactly which columns
// change; user_id and created_at are never part of the map.
func (r *transactionRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Transaction{}, id).Error
}
