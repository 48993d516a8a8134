package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

// Role mirrors the roles table: a named bundle of independent boolean
// permission flags. There is no hierarchy between flags.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	CanViewPatients    bool `json:"can_view_patients"`
	CanAddPatients     bool `json:"can_add_patients"`
	CanEditPatients    bool `json:"can_edit_patients"`
	CanViewPharmacy    bool `json:"can_view_pharmacy"`
	CanManageInventory bool `json:"can_manage_inventory"`
	CanSellMedicine    bool `json:"can_sell_medicine"`
	CanViewReports     bool `json:"can_view_reports"`
	CanManageUsers     bool `json:"can_manage_users"`
	CanViewLogs        bool `json:"can_view_logs"`
	CanProcessPayments bool `json:"can_process_payments"`
	CanPrescribe       bool `json:"can_prescribe"`
	CanSetPrices       bool `json:"can_set_prices"`
	CanArchiveData     bool `json:"can_archive_data"`
}

// User is the authenticated principal. IsSuperAdmin is an override evaluated
// before any role flag, not a fourteenth flag on the role.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         *Role      `json:"role,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Session is the opaque session-establishment instruction handed back to the
// web layer on a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// LoginMeta carries the request attributes the security core needs for
// lockout keying and audit entries.
type LoginMeta struct {
	IPAddress string
	UserAgent string
	Endpoint  string
}

type RepositoryAPI interface {
	FindUserByUsername(username string) (*User, error)
	GetUserByID(userID int64) (*User, error)
	UpdateLastLogin(userID int64, at time.Time) error
	UpdatePasswordHash(userID int64, hash string) error
}

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, meta LoginMeta) (*Session, error)
	ValidateSessionToken(tokenString string) (*Claims, error)
	GetUserByID(userID int64) (*User, error)
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO, meta LoginMeta) error
	Resolver() *Resolver
}

type TokenGeneratorAPI interface {
	GenerateSessionToken(user *User) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims are the signed session token claims. SessionID is rotated on every
// login.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// FromDataModel maps a users row (with its preloaded role) into the domain
// shape. A missing role comes through as nil and is handled by the resolver,
// never here.
func FromDataModel(u *userDatamodel.User) *User {
	domainUser := &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsSuperAdmin: u.IsSuperAdmin,
		LastLogin:    u.LastLogin,
	}
	if u.Role != nil {
		domainUser.Role = RoleFromDataModel(u.Role)
	}
	return domainUser
}

func RoleFromDataModel(r *userDatamodel.Role) *Role {
	return &Role{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		CanViewPatients:    r.CanViewPatients,
		CanAddPatients:     r.CanAddPatients,
		CanEditPatients:    r.CanEditPatients,
		CanViewPharmacy:    r.CanViewPharmacy,
		CanManageInventory: r.CanManageInventory,
		CanSellMedicine:    r.CanSellMedicine,
		CanViewReports:     r.CanViewReports,
		CanManageUsers:     r.CanManageUsers,
		CanViewLogs:        r.CanViewLogs,
		CanProcessPayments: r.CanProcessPayments,
		CanPrescribe:       r.CanPrescribe,
		CanSetPrices:       r.CanSetPrices,
		CanArchiveData:     r.CanArchiveData,
	}
}
