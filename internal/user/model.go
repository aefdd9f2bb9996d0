package user

import "time"

// User represents a user identity. Identity is immutable once created;
// everything downstream references users by id, never by free-text name.
type User struct {
	ID        int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
