package expense

import (
	"time"

	"github.com/finledger/groupledger/internal/expense/split"
)

// Expense represents a recorded group expense
type Expense struct {
	ID          int64     `json:"expense_id"`
	GroupID     int64     `json:"group_id"`
	PayerID     int64     `json:"payer_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	ExpenseDate time.Time `json:"expense_date"`
	Type        string    `json:"type"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`
}

// Share represents one member's portion of an expense
type Share struct {
	ID          int64   `json:"id"`
	ExpenseID   int64   `json:"expense_id"`
	UserID      int64   `json:"user_id"`
	ShareAmount float64 `json:"share_amount"`

	// Populated via JOIN
	UserName string `json:"user_name,omitempty"`
}

// sharesFromResult converts a split calculation result into persistable
// share rows.
func sharesFromResult(result split.Result) []Share {
	shares := make([]Share, len(result))
	for i, s := range result {
		shares[i] = Share{
			UserID:      s.UserID,
			ShareAmount: s.Amount,
			UserName:    s.UserName,
		}
	}
	return shares
}
