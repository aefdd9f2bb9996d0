package split

import (
	"errors"
	"math"
	"testing"

	"github.com/finledger/groupledger/internal/money"
)

func roster(names ...string) []Member {
	members := make([]Member, len(names))
	for i, n := range names {
		members[i] = Member{UserID: int64(i + 1), Name: n}
	}
	return members
}

func assertSumsTo(t *testing.T, result Result, total float64) {
	t.Helper()
	if got := result.Total(); got != money.RoundToCents(total) {
		t.Errorf("shares sum to %v, want exactly %v", got, money.RoundToCents(total))
	}
	for _, s := range result {
		if s.Amount < 0 {
			t.Errorf("share for %s is negative: %v", s.UserName, s.Amount)
		}
	}
}

func TestEqualStrategy(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		memberCount int
		wantFirst   float64
		wantRest    float64
	}{
		{"single member", 100.00, 1, 100.00, 0},
		{"two members even", 100.00, 2, 50.00, 50.00},
		{"three members with remainder", 100.00, 3, 33.34, 33.33},
		{"seven members non-dividing", 100.00, 7, 14.26, 14.29},
		{"no remainder cents", 90.00, 3, 30.00, 30.00},
		{"remainder cents", 0.05, 3, 0.01, 0.02},
	}

	strategy := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, tt.memberCount)
			for i := range names {
				names[i] = string(rune('A' + i))
			}
			result, err := strategy.Calculate(tt.total, Input{Roster: roster(names...)})
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if len(result) != tt.memberCount {
				t.Fatalf("got %d shares, want %d", len(result), tt.memberCount)
			}

			assertSumsTo(t, result, tt.total)

			if result[0].Amount != tt.wantFirst {
				t.Errorf("first share = %v, want %v", result[0].Amount, tt.wantFirst)
			}
			for _, s := range result[1:] {
				if s.Amount != tt.wantRest {
					t.Errorf("share for %s = %v, want %v", s.UserName, s.Amount, tt.wantRest)
				}
			}
		})
	}
}

func TestEqualStrategyTripScenario(t *testing.T) {
	// Group "Trip" with A, B, C splitting 100.00: remainder cent lands
	// on the first roster member.
	result, err := (&EqualStrategy{}).Calculate(100.00, Input{Roster: roster("A", "B", "C")})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	want := map[string]float64{"A": 33.34, "B": 33.33, "C": 33.33}
	for _, s := range result {
		if s.Amount != want[s.UserName] {
			t.Errorf("%s share = %v, want %v", s.UserName, s.Amount, want[s.UserName])
		}
	}
	assertSumsTo(t, result, 100.00)
}

func TestEqualStrategyEmptyRoster(t *testing.T) {
	_, err := (&EqualStrategy{}).Calculate(50.00, Input{})
	if !errors.Is(err, ErrNoMembers) {
		t.Errorf("error = %v, want ErrNoMembers", err)
	}
}

func TestPercentageStrategy(t *testing.T) {
	shares := func(pcts ...float64) []MemberShare {
		out := make([]MemberShare, len(pcts))
		for i, p := range pcts {
			out[i] = MemberShare{UserID: int64(i + 1), Name: string(rune('A' + i)), Percentage: p}
		}
		return out
	}

	tests := []struct {
		name    string
		total   float64
		shares  []MemberShare
		wantErr error
		want    []float64
	}{
		{"exact hundred", 300.00, shares(50, 30, 20), nil, []float64{150.00, 90.00, 60.00}},
		{"sum within tolerance low", 100.00, shares(49.99, 50), nil, nil},
		{"sum within tolerance high", 100.00, shares(50.01, 50), nil, nil},
		{"sum far off", 100.00, shares(50, 45), ErrInvalidPercentageSum, nil},
		{"negative percentage", 100.00, shares(-10, 110), ErrPercentageOutOfRange, nil},
		{"over hundred single", 100.00, shares(101), ErrPercentageOutOfRange, nil},
		{"no shares", 100.00, nil, ErrNoShares, nil},
		{"thirds reconcile", 100.00, shares(33.33, 33.33, 33.34), nil, nil},
	}

	strategy := &PercentageStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := strategy.Calculate(tt.total, Input{Shares: tt.shares})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			assertSumsTo(t, result, tt.total)
			for i, want := range tt.want {
				if result[i].Amount != want {
					t.Errorf("share %d = %v, want %v", i, result[i].Amount, want)
				}
			}
		})
	}
}

func TestPercentageStrategyRoundingDiffGoesToFirst(t *testing.T) {
	// 3 x 33.333...% of 100.00 rounds to 33.33 each; the leftover cent
	// must land on the first entry in input order.
	in := Input{Shares: []MemberShare{
		{UserID: 7, Name: "G", Percentage: 33.33},
		{UserID: 2, Name: "B", Percentage: 33.33},
		{UserID: 5, Name: "E", Percentage: 33.34},
	}}
	result, err := (&PercentageStrategy{}).Calculate(100.00, in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertSumsTo(t, result, 100.00)
	if result[0].UserID != 7 {
		t.Fatalf("input order not preserved: first share is user %d", result[0].UserID)
	}
}

func TestRoundingDiffSkipsSharesTooSmallToAbsorbIt(t *testing.T) {
	// Three 33.335% shares each round up to 33.34, so two cents have to
	// come back out. The zero-percent first entry cannot absorb them;
	// the adjustment must land on the next entry instead of pushing the
	// first one below zero.
	percIn := Input{Shares: []MemberShare{
		{UserID: 1, Name: "A", Percentage: 0},
		{UserID: 2, Name: "B", Percentage: 33.335},
		{UserID: 3, Name: "C", Percentage: 33.335},
		{UserID: 4, Name: "D", Percentage: 33.335},
	}}
	result, err := (&PercentageStrategy{}).Calculate(100.00, percIn)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertSumsTo(t, result, 100.00)
	if result[0].Amount != 0 {
		t.Errorf("zero-percent share = %v, want 0", result[0].Amount)
	}
	if result[1].Amount != 33.32 {
		t.Errorf("adjusted share = %v, want 33.32", result[1].Amount)
	}

	customIn := Input{Shares: []MemberShare{
		{UserID: 1, Name: "A", Amount: 0},
		{UserID: 2, Name: "B", Amount: 33.335},
		{UserID: 3, Name: "C", Amount: 33.335},
		{UserID: 4, Name: "D", Amount: 33.335},
	}}
	result, err = (&CustomAmountStrategy{}).Calculate(100.00, customIn)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertSumsTo(t, result, 100.00)
	if result[0].Amount != 0 {
		t.Errorf("zero-amount share = %v, want 0", result[0].Amount)
	}
	if result[1].Amount != 33.32 {
		t.Errorf("adjusted share = %v, want 33.32", result[1].Amount)
	}
}

func TestCustomAmountStrategy(t *testing.T) {
	shares := func(amounts ...float64) []MemberShare {
		out := make([]MemberShare, len(amounts))
		for i, a := range amounts {
			out[i] = MemberShare{UserID: int64(i + 1), Name: string(rune('A' + i)), Amount: a}
		}
		return out
	}

	tests := []struct {
		name    string
		total   float64
		shares  []MemberShare
		wantErr error
	}{
		{"exact sum", 200.00, shares(80.00, 70.00, 50.00), nil},
		{"within tolerance under", 200.00, shares(80.00, 70.00, 49.99), nil},
		{"within tolerance over", 200.00, shares(80.00, 70.00, 50.01), nil},
		{"off by a dollar", 200.00, shares(80.00, 70.00, 49.00), ErrAmountMismatch},
		{"negative amount", 200.00, shares(210.00, -10.00), ErrNegativeAmount},
		{"no shares", 200.00, nil, ErrNoShares},
	}

	strategy := &CustomAmountStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := strategy.Calculate(tt.total, Input{Shares: tt.shares})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			assertSumsTo(t, result, tt.total)
		})
	}
}

func TestCustomAmountDerivedPercentage(t *testing.T) {
	in := Input{Shares: []MemberShare{
		{UserID: 1, Name: "A", Amount: 150.00},
		{UserID: 2, Name: "B", Amount: 50.00},
	}}
	result, err := (&CustomAmountStrategy{}).Calculate(200.00, in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result[0].Percent != 75.00 || result[1].Percent != 25.00 {
		t.Errorf("derived percentages = %v, %v, want 75, 25", result[0].Percent, result[1].Percent)
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	for _, st := range []SplitType{SplitTypeEqual, SplitTypePercent, SplitTypeCustom, SplitTypeItemized} {
		strategy, err := f.Create(st)
		if err != nil {
			t.Fatalf("Create(%s) failed: %v", st, err)
		}
		if strategy.Type() != st {
			t.Errorf("strategy type = %s, want %s", strategy.Type(), st)
		}
	}
	if _, err := f.CreateFromString("proportional"); err == nil {
		t.Error("expected error for unknown split type")
	}
}

func TestResultTotalRounds(t *testing.T) {
	r := Result{{Amount: 0.1}, {Amount: 0.2}}
	if got := r.Total(); math.Abs(got-0.30) > 1e-9 {
		t.Errorf("Total() = %v, want 0.30", got)
	}
}
