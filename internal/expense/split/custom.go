package split

import "github.com/finledger/groupledger/internal/money"

// CustomAmountStrategy takes an explicit amount per member. The amounts
// must sum to within money.Tolerance of the total; each share is the
// stated amount rounded to cents, and the percentage is derived from it
// for display only.
type CustomAmountStrategy struct{}

// Type returns the split type identifier.
func (s *CustomAmountStrategy) Type() SplitType {
	return SplitTypeCustom
}

// Validate checks the inputs for a custom-amount split.
func (s *CustomAmountStrategy) Validate(totalAmount float64, in Input) error {
	if len(in.Shares) == 0 {
		return ErrNoShares
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}

	var assigned float64
	for _, sh := range in.Shares {
		if sh.Amount < 0 {
			return ErrNegativeAmount
		}
		assigned += sh.Amount
	}
	if !money.WithinTolerance(assigned, totalAmount) {
		return ErrAmountMismatch
	}
	return nil
}

// Calculate returns the stated amounts, rounded, with derived percentages.
func (s *CustomAmountStrategy) Calculate(totalAmount float64, in Input) (Result, error) {
	if err := s.Validate(totalAmount, in); err != nil {
		return nil, err
	}

	total := money.RoundToCents(totalAmount)
	result := make(Result, len(in.Shares))
	var assigned float64
	for i, sh := range in.Shares {
		amount := money.RoundToCents(sh.Amount)
		assigned += amount
		result[i] = Share{
			UserID:   sh.UserID,
			UserName: sh.Name,
			Amount:   amount,
			Percent:  money.SharePercent(amount, total),
		}
	}

	// The stated amounts may miss the total by up to the tolerance;
	// reconcile onto the first entry that can absorb the difference so
	// the stored shares sum to the expense amount exactly and no share
	// ends up negative.
	diff := money.RoundToCents(total - assigned)
	if !reconcileDiff(result, diff) {
		return nil, ErrAmountMismatch
	}

	return result, nil
}
