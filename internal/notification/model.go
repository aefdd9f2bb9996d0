package notification

import "time"

// Pass record status.
const (
	PassStatusIssued  = "issued"
	PassStatusPending = "pending"
	PassStatusFailed  = "failed"
)

// WalletPass records a pass issued (or attempted) for a member's group
// balance.
type WalletPass struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	ObjectID  string    `json:"object_id"`
	SaveURL   string    `json:"save_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PassData is the balance snapshot rendered onto a member's pass.
type PassData struct {
	UserID    int64
	UserName  string
	GroupName string
	Owed      float64
	GetBack   float64
}

// ReceiptData is a one-off receipt rendered as a wallet pass.
type ReceiptData struct {
	UserID   int64
	Title    string
	Summary  string
	Amount   float64
	Currency string
}
