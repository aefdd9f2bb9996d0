package balance

// Member status relative to the group ledger.
const (
	StatusOwesMoney = "owes_money"
	StatusOwedMoney = "owed_money"
	StatusSettled   = "settled"
)

// MemberBalance is one member's aggregate position in a group.
// NetBalance is TotalPaid minus TotalOwed: positive means the group
// owes them, negative means they owe the group.
type MemberBalance struct {
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
	Status     string  `json:"status"`
}

// GroupSummary aggregates every member's balance plus group-level
// totals. SettlementBalanced asserts that the money owed equals the
// money to be paid back, within a cent.
type GroupSummary struct {
	GroupID            int64            `json:"group_id"`
	GroupName          string           `json:"group_name"`
	TotalSpent         float64          `json:"total_spent"`
	TotalOwed          float64          `json:"total_owed"`
	TotalGetBack       float64          `json:"total_get_back"`
	Balances           []*MemberBalance `json:"balances"`
	UsersWhoOwe        []string         `json:"users_who_owe"`
	UsersWhoGetBack    []string         `json:"users_who_get_back"`
	SettlementBalanced bool             `json:"settlement_balanced"`
}
