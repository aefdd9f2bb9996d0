package expense

import "github.com/finledger/groupledger/internal/expense/split"

// EqualSplitRequest splits an amount evenly across the whole group
type EqualSplitRequest struct {
	GroupName   string  `json:"group" binding:"required" example:"Trip"`
	Amount      float64 `json:"amount" binding:"required" example:"100.00"`
	Description string  `json:"description" example:"Dinner"`
	Currency    string  `json:"currency,omitempty" example:"USD"`
}

// PercentageShare assigns a percentage of the total to a named member.
// Shares are ordered: rounding remainders land on the first entry.
type PercentageShare struct {
	Name       string  `json:"name" binding:"required" example:"Alice"`
	Percentage float64 `json:"percentage" binding:"required" example:"50"`
}

// PercentageSplitRequest splits an amount by explicit percentages
type PercentageSplitRequest struct {
	GroupName   string            `json:"group" binding:"required" example:"Trip"`
	Amount      float64           `json:"amount" binding:"required" example:"300.00"`
	Description string            `json:"description" example:"Hotel"`
	Currency    string            `json:"currency,omitempty" example:"USD"`
	Shares      []PercentageShare `json:"shares" binding:"required"`
}

// CustomShare assigns an exact amount to a named member
type CustomShare struct {
	Name   string  `json:"name" binding:"required" example:"Bob"`
	Amount float64 `json:"amount" binding:"required" example:"42.50"`
}

// CustomSplitRequest splits an amount by explicit per-member amounts
type CustomSplitRequest struct {
	GroupName   string        `json:"group" binding:"required" example:"Trip"`
	Amount      float64       `json:"amount" binding:"required" example:"100.00"`
	Description string        `json:"description" example:"Groceries"`
	Currency    string        `json:"currency,omitempty" example:"USD"`
	Shares      []CustomShare `json:"shares" binding:"required"`
}

// ItemInput is a receipt line with the names of whoever consumed it.
// Items with no assignees fall into a pool handled by default_split.
type ItemInput struct {
	Name      string   `json:"name" binding:"required" example:"Steak"`
	Price     float64  `json:"price" binding:"required" example:"30.00"`
	Assignees []string `json:"assignees,omitempty" example:"Alice"`
}

// ItemizedSplitRequest splits a receipt item by item
type ItemizedSplitRequest struct {
	GroupName    string      `json:"group" binding:"required" example:"Trip"`
	Description  string      `json:"description" example:"Restaurant"`
	Currency     string      `json:"currency,omitempty" example:"USD"`
	Items        []ItemInput `json:"items" binding:"required"`
	DefaultSplit string      `json:"default_split,omitempty" example:"equal"`
}

// SplitOutcome is the response for every split operation
type SplitOutcome struct {
	ExpenseID   int64            `json:"expense_id" example:"17"`
	GroupName   string           `json:"group" example:"Trip"`
	PaidBy      string           `json:"paid_by" example:"Alice"`
	Description string           `json:"description" example:"Dinner"`
	TotalAmount float64          `json:"total_amount" example:"100.00"`
	Currency    string           `json:"currency" example:"USD"`
	SplitType   string           `json:"split_type" example:"equal"`
	Shares      []split.Share    `json:"shares"`
	PassStatus  string           `json:"pass_status" example:"issued"`
	PassURLs    map[int64]string `json:"pass_urls,omitempty"`
}

// ExpenseResponse represents a stored expense in API responses
type ExpenseResponse struct {
	ID          int64    `json:"expense_id" example:"17"`
	GroupID     int64    `json:"group_id" example:"1"`
	PayerID     int64    `json:"payer_id" example:"1"`
	PayerName   string   `json:"payer_name,omitempty" example:"Alice"`
	Amount      float64  `json:"amount" example:"100.00"`
	Currency    string   `json:"currency" example:"USD"`
	Description string   `json:"description" example:"Dinner"`
	ExpenseDate string   `json:"expense_date" example:"2025-06-01T20:00:00Z"`
	Type        string   `json:"type" example:"equal"`
	Shares      []*Share `json:"shares,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse(shares []*Share) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   e.PayerName,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02T15:04:05Z"),
		Type:        e.Type,
		Shares:      shares,
	}
}
