package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// Store defines persistence for issued pass records.
type Store interface {
	Upsert(ctx context.Context, pass *WalletPass) (*WalletPass, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*WalletPass, error)
}

// Repository implements Store on top of Postgres.
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert records the latest pass state for a (group, user) pair. A pass
// is reissued on every expense, so the record tracks only the most
// recent attempt.
func (r *Repository) Upsert(ctx context.Context, pass *WalletPass) (*WalletPass, error) {
	query := `
		INSERT INTO wallet_passes (group_id, user_id, object_id, save_url, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET object_id = EXCLUDED.object_id,
		    save_url = EXCLUDED.save_url,
		    status = EXCLUDED.status,
		    created_at = NOW()
		RETURNING id, group_id, user_id, object_id, save_url, status, created_at`

	saved := &WalletPass{}
	err := r.db.QueryRowContext(ctx, query,
		pass.GroupID, pass.UserID, pass.ObjectID, pass.SaveURL, pass.Status,
	).Scan(
		&saved.ID, &saved.GroupID, &saved.UserID,
		&saved.ObjectID, &saved.SaveURL, &saved.Status, &saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wallet pass: %w", err)
	}
	return saved, nil
}

func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*WalletPass, error) {
	query := `
		SELECT id, group_id, user_id, object_id, save_url, status, created_at
		FROM wallet_passes
		WHERE group_id = $1
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet passes: %w", err)
	}
	defer rows.Close()

	var passes []*WalletPass
	for rows.Next() {
		p := &WalletPass{}
		if err := rows.Scan(
			&p.ID, &p.GroupID, &p.UserID,
			&p.ObjectID, &p.SaveURL, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet pass: %w", err)
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet passes: %w", err)
	}
	return passes, nil
}
