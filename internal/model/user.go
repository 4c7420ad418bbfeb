package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCommunityMember Role = "community_member"
	RoleModerator       Role = "moderator"
	RoleAdmin           Role = "admin"
	RoleGuest           Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCommunityMember, RoleModerator, RoleAdmin, RoleGuest:
		return true
	}
	return false
}

type Permission string

const (
	PermissionPost        Permission = "can_post"
	PermissionComment     Permission = "can_comment"
	PermissionModerate    Permission = "can_moderate"
	PermissionManageUsers Permission = "can_manage_users"
)

// Grants are the fine-grained permission flags. They are snapshotted from
// the role at creation time and independently mutable by admins afterwards:
// changing a user's role does NOT recompute them.
type Grants struct {
	CanPost        bool `gorm:"not null;default:false" json:"can_post"`
	CanComment     bool `gorm:"not null;default:false" json:"can_comment"`
	CanModerate    bool `gorm:"not null;default:false" json:"can_moderate"`
	CanManageUsers bool `gorm:"not null;default:false" json:"can_manage_users"`
}

func (g Grants) Has(p Permission) bool {
	switch p {
	case PermissionPost:
		return g.CanPost
	case PermissionComment:
		return g.CanComment
	case PermissionModerate:
		return g.CanModerate
	case PermissionManageUsers:
		return g.CanManageUsers
	}
	return false
}

// DefaultGrants returns the permission snapshot a role starts with.
func DefaultGrants(role Role) Grants {
	switch role {
	case RoleAdmin:
		return Grants{CanPost: true, CanComment: true, CanModerate: true, CanManageUsers: true}
	case RoleModerator:
		return Grants{CanPost: true, CanComment: true, CanModerate: true}
	case RoleCommunityMember:
		return Grants{CanPost: true, CanComment: true}
	default:
		return Grants{}
	}
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"` // nil only for the guest role
	Role         Role      `gorm:"size:30;not null;default:community_member" json:"role"`
	Grants       Grants    `gorm:"embedded" json:"grants"`

	ResetTokenHash   *string    `gorm:"size:64" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.LastActive.IsZero() {
		u.LastActive = time.Now()
	}
	return nil
}
