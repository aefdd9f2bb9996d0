package split

import "github.com/finledger/groupledger/internal/money"

// PercentageStrategy divides the total according to per-member
// percentages. The percentage sum must be within money.Tolerance of 100;
// each share is rounded individually and the rounding difference is
// added to the first entry, in input order, that can absorb it.
type PercentageStrategy struct{}

// Type returns the split type identifier.
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercent
}

// Validate checks the inputs for a percentage split.
func (s *PercentageStrategy) Validate(totalAmount float64, in Input) error {
	if len(in.Shares) == 0 {
		return ErrNoShares
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var totalPercentage float64
	for _, sh := range in.Shares {
		if sh.Percentage < 0 || sh.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		totalPercentage += sh.Percentage
	}
	if !money.WithinTolerance(totalPercentage, 100) {
		return ErrInvalidPercentageSum
	}
	return nil
}

// Calculate computes each member's share from their percentage.
func (s *PercentageStrategy) Calculate(totalAmount float64, in Input) (Result, error) {
	if err := s.Validate(totalAmount, in); err != nil {
		return nil, err
	}

	total := money.RoundToCents(totalAmount)
	result := make(Result, len(in.Shares))
	var assigned float64
	for i, sh := range in.Shares {
		amount := money.RoundToCents(total * sh.Percentage / 100)
		assigned += amount
		result[i] = Share{
			UserID:   sh.UserID,
			UserName: sh.Name,
			Amount:   amount,
			Percent:  money.RoundToCents(sh.Percentage),
		}
	}

	// Reconcile rounding drift so the shares sum to the total exactly.
	// A small entry (a 0% share, for instance) must never be pushed
	// below zero by the adjustment.
	diff := money.RoundToCents(total - assigned)
	if !reconcileDiff(result, diff) {
		return nil, ErrInvalidPercentageSum
	}

	return result, nil
}
