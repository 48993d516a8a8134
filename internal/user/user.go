package user

import (
	"errors"
	"time"

	"github.com/nandasafiq/hospital-management/internal/auth"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
)

// User is the admin-facing view of a staff account. The password hash never
// leaves this package.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	RoleID       int64      `json:"role_id"`
	RoleName     string     `json:"role_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("user not found")
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleInUse         = errors.New("role is assigned to users")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
)

func FromDataModel(u *userDatamodel.User) *User {
	view := &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
		IsSuperAdmin: u.IsSuperAdmin,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Role != nil {
		view.RoleName = u.Role.Name
	}
	return view
}

func RoleFromDataModel(r *userDatamodel.Role) *auth.Role {
	return auth.RoleFromDataModel(r)
}
