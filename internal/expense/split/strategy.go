package split

import (
	"errors"
	"fmt"

	"github.com/finledger/groupledger/internal/money"
)

// SplitType identifies a splitting strategy.
type SplitType string

const (
	SplitTypeEqual    SplitType = "equal"
	SplitTypePercent  SplitType = "percentage"
	SplitTypeCustom   SplitType = "custom_amounts"
	SplitTypeItemized SplitType = "itemized"
)

// Member is one resolved group member. Strategies never touch the
// database; callers resolve names to ids before building the input.
type Member struct {
	UserID int64
	Name   string
}

// MemberShare is one entry of strategy-specific input, already resolved
// to a member identity. Percentage is set for percentage splits, Amount
// for custom-amount splits.
type MemberShare struct {
	UserID     int64
	Name       string
	Percentage float64
	Amount     float64
}

// Item is a single line item of an itemized split. An item with no
// assignees falls into the unassigned pool.
type Item struct {
	Name      string
	Price     float64
	Assignees []Member
}

// Input carries everything a strategy needs. Roster is the group's
// members in stable iteration order (joined_at, then user_id); remainder
// cents always land on the first relevant entry of that order.
type Input struct {
	Roster       []Member
	Shares       []MemberShare // percentage and custom_amounts
	Items        []Item        // itemized
	DefaultSplit string        // itemized: policy for unassigned items
}

// Share is one member's computed portion of the expense. Percent is
// informational only and is not reconciled to sum to 100.
type Share struct {
	UserID   int64   `json:"user_id"`
	UserName string  `json:"user_name"`
	Amount   float64 `json:"share_amount"`
	Percent  float64 `json:"percentage"`
}

// Result is the ordered per-member share list produced by a strategy.
// Order is the roster order for equal and itemized splits and the input
// order for percentage and custom-amount splits.
type Result []Share

// Total returns the sum of all share amounts, rounded to cents.
func (r Result) Total() float64 {
	var sum float64
	for _, s := range r {
		sum += s.Amount
	}
	return money.RoundToCents(sum)
}

// reconcileDiff folds the rounding difference into the first entry, in
// input order, whose share stays non-negative after the adjustment, so
// that the result keeps summing to the rounded total. It reports false
// when no entry can absorb the difference.
func reconcileDiff(result Result, diff float64) bool {
	if diff == 0 {
		return true
	}
	for i := range result {
		adjusted := money.RoundToCents(result[i].Amount + diff)
		if adjusted >= 0 {
			result[i].Amount = adjusted
			return true
		}
	}
	return false
}

// Strategy is the contract every splitting algorithm implements.
// Calculate guarantees that the result sums to exactly
// money.RoundToCents(totalAmount) and that every share is non-negative;
// it fails before any persistence could take place.
type Strategy interface {
	Type() SplitType
	Validate(totalAmount float64, in Input) error
	Calculate(totalAmount float64, in Input) (Result, error)
}

// Factory creates split strategies by type.
type Factory struct{}

// NewFactory creates a new strategy factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given type.
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypePercent:
		return &PercentageStrategy{}, nil
	case SplitTypeCustom:
		return &CustomAmountStrategy{}, nil
	case SplitTypeItemized:
		return &ItemizedStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from its string identifier.
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrNoMembers               = errors.New("group has no members")
	ErrNoShares                = errors.New("at least one share entry is required")
	ErrNoItems                 = errors.New("at least one item is required")
	ErrNegativeAmount          = errors.New("amounts cannot be negative")
	ErrPercentageOutOfRange    = errors.New("percentage must be between 0 and 100")
	ErrInvalidPercentageSum    = errors.New("percentages must sum to 100")
	ErrAmountMismatch          = errors.New("custom amounts must sum to the total amount")
	ErrUnsupportedDefaultSplit = errors.New("unsupported default split for unassigned items")
)
