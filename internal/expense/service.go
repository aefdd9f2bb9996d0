package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finledger/groupledger/internal/expense/split"
	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/internal/metrics"
	"github.com/finledger/groupledger/internal/money"
)

var (
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrMemberNotFound    = errors.New("member not found in group")
	ErrPersistenceFailed = errors.New("failed to record expense")
)

// Pass issuance status reported in split outcomes.
const (
	PassStatusIssued  = "issued"
	PassStatusPending = "pending"
	PassStatusSkipped = "skipped"
)

// GroupResolver is the slice of the group service the expense service
// needs: group lookup by name, roster, and member name resolution.
type GroupResolver interface {
	ResolveGroup(ctx context.Context, userID int64, groupName string) (*group.Resolution, error)
	Roster(ctx context.Context, groupID int64) ([]*group.Member, error)
	ResolveMember(ctx context.Context, groupID int64, name string) (*group.MemberMatch, error)
}

// PassIssuer issues wallet passes for a group's current balances. It is
// called after the expense transaction commits; a failure here never
// rolls the expense back.
type PassIssuer interface {
	IssuePasses(ctx context.Context, groupID int64) (map[int64]string, error)
}

// Service orchestrates split calculation and expense recording.
type Service struct {
	store    Store
	resolver GroupResolver
	factory  *split.Factory
	passes   PassIssuer // nil when pass issuance is not configured
	logger   *slog.Logger
}

func NewService(store Store, resolver GroupResolver, factory *split.Factory, passes PassIssuer, logger *slog.Logger) *Service {
	return &Service{store: store, resolver: resolver, factory: factory, passes: passes, logger: logger}
}

// SplitEqual records an expense divided evenly across the group roster.
func (s *Service) SplitEqual(ctx context.Context, userID int64, req *EqualSplitRequest) (*SplitOutcome, error) {
	res, roster, err := s.resolve(ctx, userID, req.GroupName)
	if err != nil {
		return nil, err
	}

	in := split.Input{Roster: rosterInput(roster)}
	result, err := s.calculate(split.SplitTypeEqual, req.Amount, in)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, userID, res, split.SplitTypeEqual, req.Amount, req.Currency, req.Description, result)
}

// SplitPercentage records an expense divided by explicit percentages.
func (s *Service) SplitPercentage(ctx context.Context, userID int64, req *PercentageSplitRequest) (*SplitOutcome, error) {
	res, roster, err := s.resolve(ctx, userID, req.GroupName)
	if err != nil {
		return nil, err
	}

	shares := make([]split.MemberShare, len(req.Shares))
	for i, sh := range req.Shares {
		m, err := s.resolveShareMember(ctx, res.GroupID, sh.Name)
		if err != nil {
			return nil, err
		}
		shares[i] = split.MemberShare{UserID: m.UserID, Name: m.Name, Percentage: sh.Percentage}
	}

	in := split.Input{Roster: rosterInput(roster), Shares: shares}
	result, err := s.calculate(split.SplitTypePercent, req.Amount, in)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, userID, res, split.SplitTypePercent, req.Amount, req.Currency, req.Description, result)
}

// SplitCustomAmounts records an expense divided by explicit per-member
// amounts.
func (s *Service) SplitCustomAmounts(ctx context.Context, userID int64, req *CustomSplitRequest) (*SplitOutcome, error) {
	res, roster, err := s.resolve(ctx, userID, req.GroupName)
	if err != nil {
		return nil, err
	}

	shares := make([]split.MemberShare, len(req.Shares))
	for i, sh := range req.Shares {
		m, err := s.resolveShareMember(ctx, res.GroupID, sh.Name)
		if err != nil {
			return nil, err
		}
		shares[i] = split.MemberShare{UserID: m.UserID, Name: m.Name, Amount: sh.Amount}
	}

	in := split.Input{Roster: rosterInput(roster), Shares: shares}
	result, err := s.calculate(split.SplitTypeCustom, req.Amount, in)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, userID, res, split.SplitTypeCustom, req.Amount, req.Currency, req.Description, result)
}

// SplitItemized records a receipt split item by item; the expense total
// is the sum of item prices.
func (s *Service) SplitItemized(ctx context.Context, userID int64, req *ItemizedSplitRequest) (*SplitOutcome, error) {
	res, roster, err := s.resolve(ctx, userID, req.GroupName)
	if err != nil {
		return nil, err
	}

	total := 0.0
	items := make([]split.Item, len(req.Items))
	for i, it := range req.Items {
		assignees := make([]split.Member, len(it.Assignees))
		for j, name := range it.Assignees {
			m, err := s.resolveShareMember(ctx, res.GroupID, name)
			if err != nil {
				return nil, err
			}
			assignees[j] = split.Member{UserID: m.UserID, Name: m.Name}
		}
		items[i] = split.Item{Name: it.Name, Price: it.Price, Assignees: assignees}
		total += it.Price
	}

	defaultSplit := req.DefaultSplit
	if defaultSplit == "" {
		defaultSplit = split.DefaultSplitEqual
	}

	in := split.Input{Roster: rosterInput(roster), Items: items, DefaultSplit: defaultSplit}
	result, err := s.calculate(split.SplitTypeItemized, total, in)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, userID, res, split.SplitTypeItemized, total, req.Currency, req.Description, result)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, []*Share, error) {
	e, shares, err := s.store.GetWithShares(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		return nil, nil, ErrExpenseNotFound
	}
	return e, shares, nil
}

func (s *Service) ListByGroup(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.store.ListByGroup(ctx, groupID, page, perPage)
}

// resolve validates the caller and group name and loads the roster.
func (s *Service) resolve(ctx context.Context, userID int64, groupName string) (*group.Resolution, []*group.Member, error) {
	res, err := s.resolver.ResolveGroup(ctx, userID, groupName)
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.resolver.Roster(ctx, res.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return res, roster, nil
}

// resolveShareMember applies the service's disambiguation policy on top
// of the resolver's match result: exact and unique fuzzy matches are
// accepted, an ambiguous match falls back to the candidate with the
// lowest user id (logged, so the choice is auditable), and no match is
// an error naming the input.
func (s *Service) resolveShareMember(ctx context.Context, groupID int64, name string) (*group.Member, error) {
	match, err := s.resolver.ResolveMember(ctx, groupID, name)
	if err != nil {
		return nil, err
	}
	switch match.Kind {
	case group.MatchExact, group.MatchFuzzy:
		return match.Member, nil
	case group.MatchAmbiguous:
		picked := match.Candidates[0]
		names := make([]string, len(match.Candidates))
		for i, c := range match.Candidates {
			names[i] = c.Name
		}
		s.logger.Warn("ambiguous member name, picking lowest user id",
			"group_id", groupID, "input", name, "candidates", names, "picked", picked.Name)
		return picked, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrMemberNotFound, name)
	}
}

func (s *Service) calculate(splitType split.SplitType, amount float64, in split.Input) (split.Result, error) {
	strategy, err := s.factory.Create(splitType)
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(amount, in); err != nil {
		metrics.SplitsTotal.WithLabelValues(string(splitType), "invalid").Inc()
		return nil, err
	}
	result, err := strategy.Calculate(amount, in)
	if err != nil {
		metrics.SplitsTotal.WithLabelValues(string(splitType), "invalid").Inc()
		return nil, err
	}
	metrics.SplitsTotal.WithLabelValues(string(splitType), "ok").Inc()
	return result, nil
}

// record persists the expense with its shares, then asks for wallet
// passes. The pass call runs strictly after commit: a sink failure is
// reported in the outcome but the expense stays recorded.
func (s *Service) record(ctx context.Context, payerID int64, res *group.Resolution, splitType split.SplitType, amount float64, currency, description string, result split.Result) (*SplitOutcome, error) {
	if currency == "" {
		currency = "USD"
	}
	if description == "" {
		description = "Expense"
	}

	e := &Expense{
		GroupID:     res.GroupID,
		PayerID:     payerID,
		Amount:      money.RoundToCents(amount),
		Currency:    currency,
		Description: description,
		Type:        string(splitType),
	}
	created, err := s.store.CreateWithShares(ctx, e, sharesFromResult(result))
	if err != nil {
		metrics.PersistFailures.Inc()
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	metrics.ExpensesPersisted.Inc()

	passStatus := PassStatusSkipped
	var passURLs map[int64]string
	if s.passes != nil {
		urls, err := s.passes.IssuePasses(ctx, res.GroupID)
		// A partial map is still returned alongside the error so the
		// members whose passes did go out get their save links.
		passURLs = urls
		if err != nil {
			s.logger.Warn("wallet pass issuance failed after commit",
				"group_id", res.GroupID, "expense_id", created.ID, "error", err)
			passStatus = PassStatusPending
		} else {
			passStatus = PassStatusIssued
		}
	}

	s.logger.Info("expense recorded",
		"expense_id", created.ID, "group", res.GroupName, "split_type", splitType,
		"amount", created.Amount, "shares", len(result))

	return &SplitOutcome{
		ExpenseID:   created.ID,
		GroupName:   res.GroupName,
		PaidBy:      res.UserName,
		Description: created.Description,
		TotalAmount: created.Amount,
		Currency:    created.Currency,
		SplitType:   string(splitType),
		Shares:      result,
		PassStatus:  passStatus,
		PassURLs:    passURLs,
	}, nil
}

func rosterInput(members []*group.Member) []split.Member {
	roster := make([]split.Member, len(members))
	for i, m := range members {
		roster[i] = split.Member{UserID: m.UserID, Name: m.Name}
	}
	return roster
}
