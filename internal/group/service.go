package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finledger/groupledger/internal/user"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotAMember       = errors.New("user is not a member of the group")
	ErrAlreadyAMember   = errors.New("user is already a member of the group")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrGroupHasNoMember = errors.New("group has no members")
)

// UserDirectory is the slice of the user store the group service needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service handles group management and member resolution.
type Service struct {
	store  Store
	users  UserDirectory
	logger *slog.Logger
}

func NewService(store Store, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{store: store, users: users, logger: logger}
}

func (s *Service) Create(ctx context.Context, createdBy int64, req *CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	groupType := req.GroupType
	if groupType == "" {
		groupType = "general"
	}

	creator, err := s.users.GetByID(ctx, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to look up creator: %w", err)
	}
	if creator == nil {
		return nil, ErrUserNotFound
	}

	g, err := s.store.Create(ctx, &Group{
		Name:        name,
		Description: req.Description,
		GroupType:   groupType,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, err
	}

	// The creator is always a member; without this the group would be
	// unreachable by name resolution.
	if _, err := s.store.AddMember(ctx, g.ID, createdBy, MemberRoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to add creator to group: %w", err)
	}
	return g, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	g, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Group, error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrEmptyName
	}
	g, err := s.store.Update(ctx, id, req.Name, req.Description, req.GroupType)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGroupNotFound
	}
	return err
}

func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*Member, error) {
	g, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	members, err := s.store.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == req.UserID {
			return nil, ErrAlreadyAMember
		}
	}

	role := MemberRole(req.Role)
	if role == "" {
		role = MemberRoleMember
	}
	m, err := s.store.AddMember(ctx, groupID, req.UserID, role)
	if err != nil {
		return nil, err
	}
	m.Name = u.Name
	m.Email = u.Email
	return m, nil
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	err := s.store.RemoveMember(ctx, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotAMember
	}
	return err
}

// ResolveGroup validates that the user exists and belongs to a group
// with the given name (case-insensitive). Every ledger operation starts
// here so that a misspelled group or an outsider caller fails before
// any money math runs.
func (s *Service) ResolveGroup(ctx context.Context, userID int64, groupName string) (*Resolution, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	g, err := s.store.GetByNameForUser(ctx, userID, strings.TrimSpace(groupName))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	return &Resolution{GroupID: g.ID, GroupName: g.Name, UserName: u.Name}, nil
}

// Roster returns the group's members in the stable order used for
// deterministic share assignment.
func (s *Service) Roster(ctx context.Context, groupID int64) ([]*Member, error) {
	members, err := s.store.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupHasNoMember
	}
	return members, nil
}

// ResolveMember maps a free-text name to a group member. An exact
// (case-sensitive) match wins outright; otherwise a case-insensitive
// substring search runs, yielding a fuzzy match when unique, an
// ambiguous match carrying the candidates ordered by user id, or no
// match at all.
func (s *Service) ResolveMember(ctx context.Context, groupID int64, name string) (*MemberMatch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &MemberMatch{Kind: MatchNone}, nil
	}

	exact, err := s.store.FindMembersByExactName(ctx, groupID, name)
	if err != nil {
		return nil, err
	}
	if len(exact) == 1 {
		return &MemberMatch{Kind: MatchExact, Member: exact[0]}, nil
	}
	if len(exact) > 1 {
		return &MemberMatch{Kind: MatchAmbiguous, Candidates: exact}, nil
	}

	fuzzy, err := s.store.FindMembersByFuzzyName(ctx, groupID, name)
	if err != nil {
		return nil, err
	}
	switch len(fuzzy) {
	case 0:
		return &MemberMatch{Kind: MatchNone}, nil
	case 1:
		s.logger.Debug("resolved member by fuzzy match",
			"group_id", groupID, "input", name, "matched", fuzzy[0].Name)
		return &MemberMatch{Kind: MatchFuzzy, Member: fuzzy[0]}, nil
	default:
		return &MemberMatch{Kind: MatchAmbiguous, Candidates: fuzzy}, nil
	}
}
