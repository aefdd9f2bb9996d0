package balance

import (
	"context"
	"math"

	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/internal/money"
)

// GroupResolver is the slice of the group service the balance service
// needs.
type GroupResolver interface {
	ResolveGroup(ctx context.Context, userID int64, groupName string) (*group.Resolution, error)
	Roster(ctx context.Context, groupID int64) ([]*group.Member, error)
	GetByID(ctx context.Context, id int64) (*group.Group, error)
}

// Service computes member balances from aggregated expense data.
type Service struct {
	store    Store
	resolver GroupResolver
}

func NewService(store Store, resolver GroupResolver) *Service {
	return &Service{store: store, resolver: resolver}
}

// ComputeBalances derives every roster member's position. Members with
// no expenses at all still appear, settled at zero.
func (s *Service) ComputeBalances(ctx context.Context, groupID int64) ([]*MemberBalance, error) {
	roster, err := s.resolver.Roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	paid, err := s.store.SumPaidByMember(ctx, groupID)
	if err != nil {
		return nil, err
	}
	owed, err := s.store.SumOwedByMember(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]*MemberBalance, len(roster))
	for i, m := range roster {
		totalPaid := money.RoundToCents(paid[m.UserID])
		totalOwed := money.RoundToCents(owed[m.UserID])
		net := money.RoundToCents(totalPaid - totalOwed)

		status := StatusSettled
		switch {
		case net >= money.Tolerance:
			status = StatusOwedMoney
		case net <= -money.Tolerance:
			status = StatusOwesMoney
		}

		balances[i] = &MemberBalance{
			UserID:     m.UserID,
			Name:       m.Name,
			TotalPaid:  totalPaid,
			TotalOwed:  totalOwed,
			NetBalance: net,
			Status:     status,
		}
	}
	return balances, nil
}

// Summary computes the full group view: balances, who owes, who gets
// money back, and whether the two sides reconcile.
func (s *Service) Summary(ctx context.Context, userID int64, groupName string) (*GroupSummary, error) {
	res, err := s.resolver.ResolveGroup(ctx, userID, groupName)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, res.GroupID, res.GroupName)
}

// SummaryByGroupID is Summary addressed by ID instead of by the
// caller's group name; the name is looked up for the response.
func (s *Service) SummaryByGroupID(ctx context.Context, groupID int64) (*GroupSummary, error) {
	g, err := s.resolver.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, g.ID, g.Name)
}

func (s *Service) summarize(ctx context.Context, groupID int64, groupName string) (*GroupSummary, error) {
	balances, err := s.ComputeBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summary := &GroupSummary{
		GroupID:   groupID,
		GroupName: groupName,
		Balances:  balances,
	}

	for _, b := range balances {
		summary.TotalSpent += b.TotalPaid
		switch b.Status {
		case StatusOwesMoney:
			summary.UsersWhoOwe = append(summary.UsersWhoOwe, b.Name)
			summary.TotalOwed += -b.NetBalance
		case StatusOwedMoney:
			summary.UsersWhoGetBack = append(summary.UsersWhoGetBack, b.Name)
			summary.TotalGetBack += b.NetBalance
		}
	}
	summary.TotalSpent = money.RoundToCents(summary.TotalSpent)
	summary.TotalOwed = money.RoundToCents(summary.TotalOwed)
	summary.TotalGetBack = money.RoundToCents(summary.TotalGetBack)
	summary.SettlementBalanced = math.Abs(summary.TotalOwed-summary.TotalGetBack) < money.Tolerance
	return summary, nil
}
