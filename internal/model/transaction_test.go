package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionDirection(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		isIncome  bool
		isExpense bool
	}{
		{name: "positive value is income", value: "1000.50", isIncome: true, isExpense: false},
		{name: "negative value is expense", value: "-250.75", isIncome: false, isExpense: true},
		{name: "zero is neither", value: "0.00", isIncome: false, isExpense: false},
		{name: "one cent income", value: "0.01", isIncome: true, isExpense: false},
		{name: "one cent expense", value: "-0.01", isIncome: false, isExpense: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{Value: decimal.RequireFromString(tt.value)}
			assert.Equal(t, tt.isIncome, txn.IsIncome())
			assert.Equal(t, tt.isExpense, txn.IsExpense())
			// Mutually exclusive in every case
			assert.False(t, txn.IsIncome() && txn.IsExpense())
		})
	}
}
