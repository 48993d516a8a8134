package postgres

import (
	"errors"
	"time"

	"github.com/nandasafiq/hospital-management/internal/auth"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Repository is the credential store behind the authentication service.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUserByUsername does an exact, case-sensitive lookup. Inactive users are
// returned too; the active check is a separate step of the login flow so it
// can be audited distinctly.
func (r *Repository) FindUserByUsername(username string) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Preload("Role").Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&row), nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Preload("Role").First(&row, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&row), nil
}

func (r *Repository) UpdateLastLogin(userID int64, at time.Time) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login": at,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repository) UpdatePasswordHash(userID int64, hash string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    time.Now(),
		}).Error
}
