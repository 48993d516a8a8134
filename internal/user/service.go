package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nandasafiq/hospital-management/internal/audit"
	"github.com/nandasafiq/hospital-management/internal/auth"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(userID int64) (*userDatamodel.User, error)
	GetByUsername(username string) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	List() ([]userDatamodel.User, error)
	Create(u *userDatamodel.User) error
	Update(u *userDatamodel.User) error
	SetActive(userID int64, active bool) error

	GetRole(roleID int64) (*userDatamodel.Role, error)
	ListRoles() ([]userDatamodel.Role, error)
	CreateRole(r *userDatamodel.Role) error
	UpdateRole(r *userDatamodel.Role) error
	DeleteRole(roleID int64) error
	CountUsersWithRole(roleID int64) (int64, error)
}

// Service implements the staff and role administration behind the
// can_manage_users permission. Passwords go through the same strength policy
// as the login flow before they are hashed.
type Service struct {
	repo       Repository
	policy     auth.PasswordPolicy
	audit      audit.Recorder
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, policy auth.PasswordPolicy, auditor audit.Recorder, bcryptCost int, logger *slog.Logger) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:       repo,
		policy:     policy,
		audit:      auditor,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	row, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List() ([]User, error) {
	rows, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, 0, len(rows))
	for i := range rows {
		users = append(users, *FromDataModel(&rows[i]))
	}
	return users, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO, actor *auth.User) (*User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if ok, reason := s.policy.Validate(dto.Password); !ok {
		return nil, auth.ValidationError{Msg: reason}
	}

	if existing, err := s.repo.GetByUsername(dto.Username); err == nil && existing != nil {
		return nil, ErrDuplicateUsername
	}
	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	}

	if _, err := s.repo.GetRole(dto.RoleID); err != nil {
		return nil, ErrRoleNotFound
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		RoleID:       dto.RoleID,
		IsActive:     true,
		IsSuperAdmin: dto.IsSuperAdmin,
	}
	if err := s.repo.Create(row); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.recordAdminAction(ctx, audit.EventUserCreated,
		fmt.Sprintf("User created: %s", dto.Username), actor)

	return FromDataModel(row), nil
}

// Deactivate soft-disables the account. Users are never deleted, so their
// audit history stays attributable.
func (s *Service) Deactivate(ctx context.Context, userID int64, actor *auth.User) error {
	row, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(userID, false); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.recordAdminAction(ctx, audit.EventUserDeactivated,
		fmt.Sprintf("User deactivated: %s", row.Username), actor)
	return nil
}

func (s *Service) ListRoles() ([]userDatamodel.Role, error) {
	return s.repo.ListRoles()
}

func (s *Service) CreateRole(ctx context.Context, dto RoleDTO, actor *auth.User) (*userDatamodel.Role, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row := roleFromDTO(dto)
	if err := s.repo.CreateRole(row); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.recordAdminAction(ctx, audit.EventRoleCreated,
		fmt.Sprintf("Role created: %s", dto.Name), actor)
	return row, nil
}

func (s *Service) UpdateRole(ctx context.Context, roleID int64, dto RoleDTO, actor *auth.User) (*userDatamodel.Role, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetRole(roleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	row := roleFromDTO(dto)
	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateRole(row); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.recordAdminAction(ctx, audit.EventRoleUpdated,
		fmt.Sprintf("Role updated: %s", dto.Name), actor)
	return row, nil
}

// DeleteRole refuses to remove a role any user still references.
func (s *Service) DeleteRole(ctx context.Context, roleID int64, actor *auth.User) error {
	if _, err := s.repo.GetRole(roleID); err != nil {
		return ErrRoleNotFound
	}

	count, err := s.repo.CountUsersWithRole(roleID)
	if err != nil {
		return fmt.Errorf("count role users: %w", err)
	}
	if count > 0 {
		return ErrRoleInUse
	}

	return s.repo.DeleteRole(roleID)
}

func (s *Service) recordAdminAction(ctx context.Context, eventType, detail string, actor *auth.User) {
	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}
	s.audit.Record(ctx, audit.Entry{
		Type:   eventType,
		Detail: detail,
		UserID: actorID,
	})
}

func roleFromDTO(dto RoleDTO) *userDatamodel.Role {
	return &userDatamodel.Role{
		Name:               dto.Name,
		Description:        dto.Description,
		CanViewPatients:    dto.CanViewPatients,
		CanAddPatients:     dto.CanAddPatients,
		CanEditPatients:    dto.CanEditPatients,
		CanViewPharmacy:    dto.CanViewPharmacy,
		CanManageInventory: dto.CanManageInventory,
		CanSellMedicine:    dto.CanSellMedicine,
		CanViewReports:     dto.CanViewReports,
		CanManageUsers:     dto.CanManageUsers,
		CanViewLogs:        dto.CanViewLogs,
		CanProcessPayments: dto.CanProcessPayments,
		CanPrescribe:       dto.CanPrescribe,
		CanSetPrices:       dto.CanSetPrices,
		CanArchiveData:     dto.CanArchiveData,
	}
}
