package group

import (
	"time"

	"github.com/google/uuid"
)

// Group represents an expense-sharing group
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberStatus constants
const (
	MemberStatusInvited = "INVITED"
	MemberStatusJoined  = "JOINED"
)

// MemberRole constants
const (
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
)

// GroupMember represents a user's membership in a group
type GroupMember struct {
	ID       uuid.UUID `json:"id"`
	GroupID  uuid.UUID `json:"group_id"`
	UserID   uuid.UUID `json:"user_id"`
	Status   string    `json:"status"` // INVITED, JOINED
	Role     string    `json:"role"`   // ADMIN, MEMBER
	JoinedAt time.Time `json:"joined_at"`
	Username string    `json:"username,omitempty"` // Joined from users table
	Email    string    `json:"email,omitempty"`    // Joined from users table
}
