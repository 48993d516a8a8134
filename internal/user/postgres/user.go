package postgres

import (
	"errors"

	"github.com/nandasafiq/hospital-management/internal/user"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Preload("Role").First(&row, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetByUsername(username string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetByEmail(email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List() ([]userDatamodel.User, error) {
	var rows []userDatamodel.User
	err := r.db.Preload("Role").Order("username").Find(&rows).Error
	return rows, err
}

func (r *Repository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *Repository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

func (r *Repository) SetActive(userID int64, active bool) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("is_active", active).Error
}

func (r *Repository) GetRole(roleID int64) (*userDatamodel.Role, error) {
	var row userDatamodel.Role
	err := r.db.First(&row, roleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrRoleNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListRoles() ([]userDatamodel.Role, error) {
	var rows []userDatamodel.Role
	err := r.db.Order("name").Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateRole(role *userDatamodel.Role) error {
	return r.db.Create(role).Error
}

func (r *Repository) UpdateRole(role *userDatamodel.Role) error {
	return r.db.Save(role).Error
}

func (r *Repository) DeleteRole(roleID int64) error {
	return r.db.Delete(&userDatamodel.Role{}, roleID).Error
}

func (r *Repository) CountUsersWithRole(roleID int64) (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}
