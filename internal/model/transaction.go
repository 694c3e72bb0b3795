package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single signed ledger entry. The value's sign is the only
// signal of direction: positive for income, negative for expense. Ownership
// and creation time never change after the row is created.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Value       decimal.Decimal `json:"value" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsIncome reports whether the entry is an inflow.
func (t *Transaction) IsIncome() bool {
	return t.Value.IsPositive()
}

// IsExpense reports whether the entry is an outflow. A zero value is neither
// income nor expense.
func (t *Transaction) IsExpense() bool {
	return t.Value.IsNegative()
}
