package group

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Store defines the persistence operations the group service depends on.
type Store interface {
	Create(ctx context.Context, g *Group) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetByNameForUser(ctx context.Context, userID int64, name string) (*Group, error)
	ListForUser(ctx context.Context, userID int64) ([]*Group, error)
	Update(ctx context.Context, id int64, name, description, groupType *string) (*Group, error)
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, groupID, userID int64, role MemberRole) (*Member, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	FindMembersByExactName(ctx context.Context, groupID int64, name string) ([]*Member, error)
	FindMembersByFuzzyName(ctx context.Context, groupID int64, fragment string) ([]*Member, error)
}

// Repository implements Store on top of Postgres.
type Repository struct {
	db *sql.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, g *Group) (*Group, error) {
	query := `
		INSERT INTO groups (name, description, group_type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING group_id, name, description, group_type, created_by, created_at`

	created := &Group{}
	err := r.db.QueryRowContext(ctx, query, g.Name, g.Description, g.GroupType, g.CreatedBy).
		Scan(&created.ID, &created.Name, &created.Description, &created.GroupType, &created.CreatedBy, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT group_id, name, description, group_type, created_by, created_at
		FROM groups
		WHERE group_id = $1`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.GroupType, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// GetByNameForUser finds a group by case-insensitive name among the
// groups the given user belongs to.
func (r *Repository) GetByNameForUser(ctx context.Context, userID int64, name string) (*Group, error) {
	query := `
		SELECT g.group_id, g.name, g.description, g.group_type, g.created_by, g.created_at
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.group_id
		WHERE ug.user_id = $1 AND LOWER(g.name) = LOWER($2)
		ORDER BY g.group_id
		LIMIT 1`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, userID, name).
		Scan(&g.ID, &g.Name, &g.Description, &g.GroupType, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}
	return g, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]*Group, error) {
	query := `
		SELECT g.group_id, g.name, g.description, g.group_type, g.created_by, g.created_at
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.group_id
		WHERE ug.user_id = $1
		ORDER BY g.group_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.GroupType, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

func (r *Repository) Update(ctx context.Context, id int64, name, description, groupType *string) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    group_type = COALESCE($4, group_type)
		WHERE group_id = $1
		RETURNING group_id, name, description, group_type, created_by, created_at`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, id, name, description, groupType).
		Scan(&g.ID, &g.Name, &g.Description, &g.GroupType, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return g, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE group_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) AddMember(ctx context.Context, groupID, userID int64, role MemberRole) (*Member, error) {
	query := `
		INSERT INTO user_groups (group_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, user_id, role, joined_at`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, role).
		Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return m, nil
}

func (r *Repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_groups WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetMembers returns the group roster in stable order. Join order is
// the tiebreaker-free ordering every share calculation relies on.
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	query := `
		SELECT ug.id, ug.group_id, ug.user_id, ug.role, ug.joined_at, u.name, u.email
		FROM user_groups ug
		JOIN users u ON u.user_id = ug.user_id
		WHERE ug.group_id = $1
		ORDER BY ug.joined_at, ug.user_id`

	return r.queryMembers(ctx, query, groupID)
}

func (r *Repository) FindMembersByExactName(ctx context.Context, groupID int64, name string) ([]*Member, error) {
	query := `
		SELECT ug.id, ug.group_id, ug.user_id, ug.role, ug.joined_at, u.name, u.email
		FROM user_groups ug
		JOIN users u ON u.user_id = ug.user_id
		WHERE ug.group_id = $1 AND u.name = $2
		ORDER BY ug.user_id`

	return r.queryMembers(ctx, query, groupID, name)
}

// FindMembersByFuzzyName matches members whose name contains the
// fragment, case-insensitively. LIKE metacharacters in the fragment are
// escaped so user input never acts as a pattern.
func (r *Repository) FindMembersByFuzzyName(ctx context.Context, groupID int64, fragment string) ([]*Member, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(fragment)
	query := `
		SELECT ug.id, ug.group_id, ug.user_id, ug.role, ug.joined_at, u.name, u.email
		FROM user_groups ug
		JOIN users u ON u.user_id = ug.user_id
		WHERE ug.group_id = $1 AND u.name ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY ug.user_id`

	return r.queryMembers(ctx, query, groupID, escaped)
}

func (r *Repository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
