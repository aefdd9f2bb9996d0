package expense

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/finledger/groupledger/internal/expense/split"
	"github.com/finledger/groupledger/internal/group"
)

type fakeResolver struct {
	groupID   int64
	groupName string
	userName  string
	roster    []*group.Member
}

func (f *fakeResolver) ResolveGroup(_ context.Context, userID int64, groupName string) (*group.Resolution, error) {
	if groupName != f.groupName {
		return nil, group.ErrGroupNotFound
	}
	return &group.Resolution{GroupID: f.groupID, GroupName: f.groupName, UserName: f.userName}, nil
}

func (f *fakeResolver) Roster(_ context.Context, groupID int64) ([]*group.Member, error) {
	if len(f.roster) == 0 {
		return nil, group.ErrGroupHasNoMember
	}
	return f.roster, nil
}

func (f *fakeResolver) ResolveMember(_ context.Context, _ int64, name string) (*group.MemberMatch, error) {
	var matches []*group.Member
	for _, m := range f.roster {
		if m.Name == name {
			return &group.MemberMatch{Kind: group.MatchExact, Member: m}, nil
		}
		if len(name) > 0 && len(m.Name) >= len(name) && m.Name[:len(name)] == name {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return &group.MemberMatch{Kind: group.MatchNone}, nil
	case 1:
		return &group.MemberMatch{Kind: group.MatchFuzzy, Member: matches[0]}, nil
	default:
		return &group.MemberMatch{Kind: group.MatchAmbiguous, Candidates: matches}, nil
	}
}

type fakeStore struct {
	created   []*Expense
	shares    [][]Share
	createErr error
	nextID    int64
}

func (f *fakeStore) CreateWithShares(_ context.Context, e *Expense, shares []Share) (*Expense, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	created := *e
	created.ID = f.nextID
	f.created = append(f.created, &created)
	f.shares = append(f.shares, shares)
	return &created, nil
}

func (f *fakeStore) GetWithShares(_ context.Context, id int64) (*Expense, []*Share, error) {
	for i, e := range f.created {
		if e.ID == id {
			shares := make([]*Share, len(f.shares[i]))
			for j := range f.shares[i] {
				shares[j] = &f.shares[i][j]
			}
			return e, shares, nil
		}
	}
	return nil, nil, nil
}

func (f *fakeStore) ListByGroup(_ context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	return f.created, len(f.created), nil
}

type fakePassIssuer struct {
	calls int
	urls  map[int64]string
	err   error
}

func (f *fakePassIssuer) IssuePasses(_ context.Context, _ int64) (map[int64]string, error) {
	f.calls++
	// Mirrors the real sink: on partial failure the successfully
	// issued urls come back alongside the error.
	return f.urls, f.err
}

func testService(passes PassIssuer) (*Service, *fakeStore, *fakeResolver) {
	resolver := &fakeResolver{
		groupID:   1,
		groupName: "Trip",
		userName:  "Alice",
		roster: []*group.Member{
			{UserID: 1, Name: "Alice"},
			{UserID: 2, Name: "Bob"},
			{UserID: 3, Name: "Bobby"},
		},
	}
	store := &fakeStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, resolver, split.NewFactory(), passes, logger)
	return svc, store, resolver
}

func assertSharesSumTo(t *testing.T, shares []split.Share, want float64) {
	t.Helper()
	sum := 0.0
	for _, s := range shares {
		sum += s.Amount
	}
	if math.Abs(sum-want) > 1e-9 {
		t.Errorf("shares sum to %.10f, want exactly %.2f", sum, want)
	}
}

func TestSplitEqual(t *testing.T) {
	passes := &fakePassIssuer{urls: map[int64]string{
		1: "https://pay.google.com/gp/v/save/a",
		2: "https://pay.google.com/gp/v/save/b",
		3: "https://pay.google.com/gp/v/save/c",
	}}
	svc, store, _ := testService(passes)

	outcome, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{
		GroupName:   "Trip",
		Amount:      100,
		Description: "Dinner",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.PaidBy != "Alice" || outcome.GroupName != "Trip" {
		t.Errorf("wrong attribution: %+v", outcome)
	}
	if outcome.SplitType != "equal" {
		t.Errorf("got split type %q, want equal", outcome.SplitType)
	}
	if len(outcome.Shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(outcome.Shares))
	}
	assertSharesSumTo(t, outcome.Shares, 100)

	if len(store.created) != 1 {
		t.Fatalf("expected one persisted expense, got %d", len(store.created))
	}
	if store.created[0].Currency != "USD" {
		t.Errorf("got currency %q, want default USD", store.created[0].Currency)
	}
	if outcome.PassStatus != PassStatusIssued {
		t.Errorf("got pass status %q, want issued", outcome.PassStatus)
	}
	if passes.calls != 1 {
		t.Errorf("pass issuer called %d times, want 1", passes.calls)
	}
	if len(outcome.PassURLs) != 3 {
		t.Fatalf("got %d save urls, want one per member", len(outcome.PassURLs))
	}
	if outcome.PassURLs[2] != "https://pay.google.com/gp/v/save/b" {
		t.Errorf("got save url %q for user 2", outcome.PassURLs[2])
	}
}

func TestSplitEqualUnknownGroup(t *testing.T) {
	svc, store, _ := testService(nil)

	_, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{GroupName: "Nope", Amount: 50})
	if !errors.Is(err, group.ErrGroupNotFound) {
		t.Fatalf("got %v, want ErrGroupNotFound", err)
	}
	if len(store.created) != 0 {
		t.Error("nothing should be persisted on resolution failure")
	}
}

func TestSplitPercentage(t *testing.T) {
	svc, store, _ := testService(nil)

	outcome, err := svc.SplitPercentage(context.Background(), 1, &PercentageSplitRequest{
		GroupName: "Trip",
		Amount:    300,
		Shares: []PercentageShare{
			{Name: "Alice", Percentage: 50},
			{Name: "Bob", Percentage: 30},
			{Name: "Bobby", Percentage: 20},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int64]float64{1: 150, 2: 90, 3: 60}
	for _, s := range outcome.Shares {
		if math.Abs(s.Amount-want[s.UserID]) > 1e-9 {
			t.Errorf("user %d got %.2f, want %.2f", s.UserID, s.Amount, want[s.UserID])
		}
	}
	if len(store.shares[0]) != 3 {
		t.Errorf("persisted %d shares, want 3", len(store.shares[0]))
	}
}

func TestSplitPercentageInvalidSumLeavesStoreUntouched(t *testing.T) {
	svc, store, _ := testService(nil)

	_, err := svc.SplitPercentage(context.Background(), 1, &PercentageSplitRequest{
		GroupName: "Trip",
		Amount:    300,
		Shares: []PercentageShare{
			{Name: "Alice", Percentage: 50},
			{Name: "Bob", Percentage: 40},
		},
	})
	if !errors.Is(err, split.ErrInvalidPercentageSum) {
		t.Fatalf("got %v, want ErrInvalidPercentageSum", err)
	}
	if len(store.created) != 0 {
		t.Error("a failed calculation must not persist anything")
	}
}

func TestSplitCustomAmountsMismatch(t *testing.T) {
	svc, store, _ := testService(nil)

	_, err := svc.SplitCustomAmounts(context.Background(), 1, &CustomSplitRequest{
		GroupName: "Trip",
		Amount:    100,
		Shares: []CustomShare{
			{Name: "Alice", Amount: 50},
			{Name: "Bob", Amount: 49},
		},
	})
	if !errors.Is(err, split.ErrAmountMismatch) {
		t.Fatalf("got %v, want ErrAmountMismatch", err)
	}
	if len(store.created) != 0 {
		t.Error("a failed calculation must not persist anything")
	}
}

func TestSplitMemberNotFound(t *testing.T) {
	svc, store, _ := testService(nil)

	_, err := svc.SplitCustomAmounts(context.Background(), 1, &CustomSplitRequest{
		GroupName: "Trip",
		Amount:    100,
		Shares: []CustomShare{
			{Name: "Zelda", Amount: 100},
		},
	})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("got %v, want ErrMemberNotFound", err)
	}
	if len(store.created) != 0 {
		t.Error("nothing should be persisted when a member cannot be resolved")
	}
}

func TestSplitAmbiguousNamePicksLowestUserID(t *testing.T) {
	svc, _, _ := testService(nil)

	// "Bo" prefixes both Bob (2) and Bobby (3).
	outcome, err := svc.SplitCustomAmounts(context.Background(), 1, &CustomSplitRequest{
		GroupName: "Trip",
		Amount:    100,
		Shares: []CustomShare{
			{Name: "Bo", Amount: 60},
			{Name: "Alice", Amount: 40},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Shares[0].UserID != 2 {
		t.Errorf("ambiguous name resolved to user %d, want 2 (lowest)", outcome.Shares[0].UserID)
	}
}

func TestSplitItemizedTotalsFromItems(t *testing.T) {
	svc, store, _ := testService(nil)

	outcome, err := svc.SplitItemized(context.Background(), 1, &ItemizedSplitRequest{
		GroupName:   "Trip",
		Description: "Restaurant",
		Items: []ItemInput{
			{Name: "Steak", Price: 30, Assignees: []string{"Alice"}},
			{Name: "Tip", Price: 10},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(outcome.TotalAmount-40) > 1e-9 {
		t.Errorf("got total %.2f, want 40.00 from item prices", outcome.TotalAmount)
	}
	assertSharesSumTo(t, outcome.Shares, 40)
	if store.created[0].Type != "itemized" {
		t.Errorf("got type %q, want itemized", store.created[0].Type)
	}
}

func TestSinkFailureKeepsExpenseCommitted(t *testing.T) {
	passes := &fakePassIssuer{
		urls: map[int64]string{1: "https://pay.google.com/gp/v/save/a"},
		err:  errors.New("wallet api down"),
	}
	svc, store, _ := testService(passes)

	outcome, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{
		GroupName: "Trip",
		Amount:    90,
	})
	if err != nil {
		t.Fatalf("a sink failure must not fail the split: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatal("expense must stay committed when the sink fails")
	}
	if outcome.PassStatus != PassStatusPending {
		t.Errorf("got pass status %q, want pending", outcome.PassStatus)
	}
	if outcome.PassURLs[1] != "https://pay.google.com/gp/v/save/a" {
		t.Errorf("save urls for the members that did get a pass must survive: %v", outcome.PassURLs)
	}
}

func TestNoPassIssuerSkips(t *testing.T) {
	svc, _, _ := testService(nil)

	outcome, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{
		GroupName: "Trip",
		Amount:    30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.PassStatus != PassStatusSkipped {
		t.Errorf("got pass status %q, want skipped", outcome.PassStatus)
	}
}

func TestPersistFailure(t *testing.T) {
	svc, store, _ := testService(nil)
	store.createErr = errors.New("connection reset")

	_, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{
		GroupName: "Trip",
		Amount:    30,
	})
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("got %v, want ErrPersistenceFailed", err)
	}
}

func TestRoundTripMatchesPersistedShares(t *testing.T) {
	svc, _, _ := testService(nil)

	outcome, err := svc.SplitEqual(context.Background(), 1, &EqualSplitRequest{
		GroupName: "Trip",
		Amount:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, shares, err := svc.GetByID(context.Background(), outcome.ExpenseID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shares) != len(outcome.Shares) {
		t.Fatalf("got %d persisted shares, want %d", len(shares), len(outcome.Shares))
	}
	sum := 0.0
	for _, s := range shares {
		sum += s.ShareAmount
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("persisted shares sum to %.10f, want exactly 100.00", sum)
	}
}
