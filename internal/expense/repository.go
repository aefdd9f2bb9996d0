package expense

import (
	"context"
	"database/sql"
	"fmt"
)

// Store defines the persistence operations the expense service depends on.
type Store interface {
	CreateWithShares(ctx context.Context, e *Expense, shares []Share) (*Expense, error)
	GetWithShares(ctx context.Context, id int64) (*Expense, []*Share, error)
	ListByGroup(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error)
}

// Repository implements Store on top of Postgres.
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithShares inserts the expense and all of its shares in one
// transaction. Either the whole record lands or none of it does.
func (r *Repository) CreateWithShares(ctx context.Context, e *Expense, shares []Share) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, payer_id, amount, currency, description, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING expense_id, group_id, payer_id, amount, currency, description, expense_date, type`

	created := &Expense{}
	err = tx.QueryRowContext(ctx, query,
		e.GroupID, e.PayerID, e.Amount, e.Currency, e.Description, e.Type,
	).Scan(
		&created.ID, &created.GroupID, &created.PayerID, &created.Amount,
		&created.Currency, &created.Description, &created.ExpenseDate, &created.Type,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	shareQuery := `
		INSERT INTO expense_shares (expense_id, user_id, share_amount)
		VALUES ($1, $2, $3)`
	for _, s := range shares {
		if _, err := tx.ExecContext(ctx, shareQuery, created.ID, s.UserID, s.ShareAmount); err != nil {
			return nil, fmt.Errorf("failed to create share for user %d: %w", s.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}
	return created, nil
}

func (r *Repository) GetWithShares(ctx context.Context, id int64) (*Expense, []*Share, error) {
	query := `
		SELECT e.expense_id, e.group_id, e.payer_id, e.amount, e.currency, e.description, e.expense_date, e.type, u.name
		FROM expenses e
		JOIN users u ON u.user_id = e.payer_id
		WHERE e.expense_id = $1`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.GroupID, &e.PayerID, &e.Amount,
		&e.Currency, &e.Description, &e.ExpenseDate, &e.Type, &e.PayerName,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shareQuery := `
		SELECT s.id, s.expense_id, s.user_id, s.share_amount, u.name
		FROM expense_shares s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.expense_id = $1
		ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, shareQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		s := &Share{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.ShareAmount, &s.UserName); err != nil {
			return nil, nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return e, shares, nil
}

func (r *Repository) ListByGroup(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE group_id = $1`, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.expense_id, e.group_id, e.payer_id, e.amount, e.currency, e.description, e.expense_date, e.type, u.name
		FROM expenses e
		JOIN users u ON u.user_id = e.payer_id
		WHERE e.group_id = $1
		ORDER BY e.expense_date DESC, e.expense_id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, groupID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(
			&e.ID, &e.GroupID, &e.PayerID, &e.Amount,
			&e.Currency, &e.Description, &e.ExpenseDate, &e.Type, &e.PayerName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, total, nil
}
