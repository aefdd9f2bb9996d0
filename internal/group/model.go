package group

import "time"

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Group represents a group in the system
type Group struct {
	ID          int64     `json:"group_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	GroupType   string    `json:"group_type"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member represents a user's membership in a group
type Member struct {
	ID       int64      `json:"id"`
	GroupID  int64      `json:"group_id"`
	UserID   int64      `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`

	// Populated via JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Resolution is the result of resolving a (user, group name) pair to a
// validated group.
type Resolution struct {
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name"`
	UserName  string `json:"user_name"`
}

// MatchKind classifies the outcome of a member name lookup.
type MatchKind string

const (
	MatchExact     MatchKind = "exact"
	MatchFuzzy     MatchKind = "fuzzy"
	MatchAmbiguous MatchKind = "ambiguous"
	MatchNone      MatchKind = "none"
)

// MemberMatch is the sum-type result of resolving a free-text member
// name within a group. Member is set for exact and fuzzy matches;
// Candidates (ordered by user id) is set for ambiguous ones so the
// caller can apply its own policy.
type MemberMatch struct {
	Kind       MatchKind
	Member     *Member
	Candidates []*Member
}
