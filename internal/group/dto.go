package group

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required" example:"Trip to Goa"`
	Description *string `json:"description,omitempty" example:"Beach trip expenses"`
	GroupType   string  `json:"group_type,omitempty" example:"trip"`
}

// UpdateGroupRequest represents the request body for updating a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" example:"Trip to Goa 2.0"`
	Description *string `json:"description,omitempty" example:"Extended beach trip"`
	GroupType   *string `json:"group_type,omitempty" example:"trip"`
}

// AddMemberRequest represents the request body for adding a member to a group
type AddMemberRequest struct {
	UserID int64  `json:"user_id" binding:"required" example:"2"`
	Role   string `json:"role,omitempty" example:"member"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          int64   `json:"group_id" example:"1"`
	Name        string  `json:"name" example:"Trip to Goa"`
	Description *string `json:"description,omitempty" example:"Beach trip expenses"`
	GroupType   string  `json:"group_type" example:"trip"`
	CreatedBy   int64   `json:"created_by" example:"1"`
	CreatedAt   string  `json:"created_at" example:"2025-06-01T10:00:00Z"`
}

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	UserID   int64  `json:"user_id" example:"2"`
	Name     string `json:"name" example:"Bob"`
	Email    string `json:"email" example:"bob@example.com"`
	Role     string `json:"role" example:"member"`
	JoinedAt string `json:"joined_at" example:"2025-06-01T10:05:00Z"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		GroupType:   g.GroupType,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
