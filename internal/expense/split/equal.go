package split

import "github.com/finledger/groupledger/internal/money"

// EqualStrategy divides the total evenly across the whole roster. Every
// member receives round_to_cents(total/n); the leftover cents from
// rounding go to the first roster member so the shares sum to the total
// exactly.
type EqualStrategy struct{}

// Type returns the split type identifier.
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks the inputs for an equal split.
func (s *EqualStrategy) Validate(totalAmount float64, in Input) error {
	if len(in.Roster) == 0 {
		return ErrNoMembers
	}
	if totalAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Calculate divides totalAmount evenly among all roster members.
func (s *EqualStrategy) Calculate(totalAmount float64, in Input) (Result, error) {
	if err := s.Validate(totalAmount, in); err != nil {
		return nil, err
	}

	total := money.RoundToCents(totalAmount)
	n := len(in.Roster)
	equalShare := money.RoundToCents(total / float64(n))
	remainder := money.RoundToCents(total - equalShare*float64(n))

	result := make(Result, n)
	for i, m := range in.Roster {
		amount := equalShare
		if i == 0 && remainder != 0 {
			amount = money.RoundToCents(amount + remainder)
		}
		result[i] = Share{
			UserID:   m.UserID,
			UserName: m.Name,
			Amount:   amount,
			Percent:  money.SharePercent(amount, total),
		}
	}

	return result, nil
}
