package split

import "github.com/finledger/groupledger/internal/money"

// DefaultSplitEqual is the only supported policy for items with no
// assignees: their prices pool up and are divided evenly across the
// whole roster.
const DefaultSplitEqual = "equal"

// ItemizedStrategy splits per line item. Each assigned item is divided
// evenly among its assignees with the item's own rounding remainder
// going to its first assignee; unassigned items accumulate into a pool
// distributed across the full roster under the default-split policy.
// The expense total is the sum of item prices and the final shares
// always reconcile to it exactly.
type ItemizedStrategy struct{}

// Type returns the split type identifier.
func (s *ItemizedStrategy) Type() SplitType {
	return SplitTypeItemized
}

// Validate checks the inputs for an itemized split. The totalAmount
// argument is ignored: the item prices define the total.
func (s *ItemizedStrategy) Validate(totalAmount float64, in Input) error {
	if len(in.Roster) == 0 {
		return ErrNoMembers
	}
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range in.Items {
		if item.Price < 0 {
			return ErrNegativeAmount
		}
	}
	if in.DefaultSplit != "" && in.DefaultSplit != DefaultSplitEqual {
		return ErrUnsupportedDefaultSplit
	}
	return nil
}

// Calculate accumulates per-member totals item by item, then distributes
// the unassigned pool. Result order is roster order; assignees outside
// the roster are appended after it in first-appearance order.
func (s *ItemizedStrategy) Calculate(totalAmount float64, in Input) (Result, error) {
	if err := s.Validate(totalAmount, in); err != nil {
		return nil, err
	}

	totals := make(map[int64]float64)
	names := make(map[int64]string)
	order := make([]int64, 0, len(in.Roster))
	seen := make(map[int64]bool)

	appendMember := func(m Member) {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			order = append(order, m.UserID)
			names[m.UserID] = m.Name
		}
	}
	for _, m := range in.Roster {
		appendMember(m)
	}

	var pool float64
	var grandTotal float64
	for _, item := range in.Items {
		price := item.Price
		grandTotal += price
		if len(item.Assignees) == 0 {
			pool += price
			continue
		}

		perPerson := money.RoundToCents(price / float64(len(item.Assignees)))
		itemRemainder := money.RoundToCents(price - perPerson*float64(len(item.Assignees)))
		for i, a := range item.Assignees {
			appendMember(a)
			amount := perPerson
			if i == 0 && itemRemainder != 0 {
				amount = money.RoundToCents(amount + itemRemainder)
			}
			totals[a.UserID] = money.RoundToCents(totals[a.UserID] + amount)
		}
	}

	// Unassigned items always get a cents-reconciled share across the
	// full roster, same remainder rule as the equal strategy.
	if pool > 0 {
		n := len(in.Roster)
		perMember := money.RoundToCents(pool / float64(n))
		poolRemainder := money.RoundToCents(pool - perMember*float64(n))
		for i, m := range in.Roster {
			amount := perMember
			if i == 0 && poolRemainder != 0 {
				amount = money.RoundToCents(amount + poolRemainder)
			}
			totals[m.UserID] = money.RoundToCents(totals[m.UserID] + amount)
		}
	}

	total := money.RoundToCents(grandTotal)
	result := make(Result, 0, len(order))
	for _, id := range order {
		amount, ok := totals[id]
		if !ok {
			continue
		}
		result = append(result, Share{
			UserID:   id,
			UserName: names[id],
			Amount:   amount,
			Percent:  money.SharePercent(amount, total),
		})
	}

	return result, nil
}
