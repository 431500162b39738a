package credentials

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is a role name attached to a user
type Role = string

const (
	// RoleUser is the default role assigned at registration
	RoleUser Role = "user"
	// RoleAdmin can manage other accounts
	RoleAdmin Role = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string         `bun:"name,notnull" json:"name,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"-"`
	IsActive      bool           `bun:"is_active,notnull,default:true" json:"is_active"`
	IsVerified    bool           `bun:"is_verified,notnull,default:false" json:"is_verified"`
	Roles         []string       `bun:"roles,type:jsonb" json:"roles,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	LastLoginAt   *time.Time     `bun:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasRole checks the user's role set
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}
