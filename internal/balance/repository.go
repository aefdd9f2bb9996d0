package balance

import (
	"context"
	"database/sql"
	"fmt"
)

// Store defines the aggregation queries the balance service depends on.
type Store interface {
	SumPaidByMember(ctx context.Context, groupID int64) (map[int64]float64, error)
	SumOwedByMember(ctx context.Context, groupID int64) (map[int64]float64, error)
}

// Repository implements Store on top of Postgres.
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SumPaidByMember totals each payer's expenses in the group.
func (r *Repository) SumPaidByMember(ctx context.Context, groupID int64) (map[int64]float64, error) {
	query := `
		SELECT payer_id, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE group_id = $1
		GROUP BY payer_id`

	return r.sumByUser(ctx, query, groupID)
}

// SumOwedByMember totals each member's shares across the group's
// expenses.
func (r *Repository) SumOwedByMember(ctx context.Context, groupID int64) (map[int64]float64, error) {
	query := `
		SELECT s.user_id, COALESCE(SUM(s.share_amount), 0)
		FROM expense_shares s
		JOIN expenses e ON e.expense_id = s.expense_id
		WHERE e.group_id = $1
		GROUP BY s.user_id`

	return r.sumByUser(ctx, query, groupID)
}

func (r *Repository) sumByUser(ctx context.Context, query string, groupID int64) (map[int64]float64, error) {
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balances: %w", err)
	}
	defer rows.Close()

	sums := make(map[int64]float64)
	for rows.Next() {
		var userID int64
		var sum float64
		if err := rows.Scan(&userID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		sums[userID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance rows: %w", err)
	}
	return sums, nil
}
