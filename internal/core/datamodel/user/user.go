package user

import "time"

// Role is a named bundle of independent permission flags. Rows are managed
// only through the admin screens and never deleted while a user references
// them.
type Role struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"column:name;uniqueIndex;not null"`
	Description string `gorm:"column:description"`

	CanViewPatients    bool `gorm:"column:can_view_patients;default:false"`
	CanAddPatients     bool `gorm:"column:can_add_patients;default:false"`
	CanEditPatients    bool `gorm:"column:can_edit_patients;default:false"`
	CanViewPharmacy    bool `gorm:"column:can_view_pharmacy;default:false"`
	CanManageInventory bool `gorm:"column:can_manage_inventory;default:false"`
	CanSellMedicine    bool `gorm:"column:can_sell_medicine;default:false"`
	CanViewReports     bool `gorm:"column:can_view_reports;default:false"`
	CanManageUsers     bool `gorm:"column:can_manage_users;default:false"`
	CanViewLogs        bool `gorm:"column:can_view_logs;default:false"`
	CanProcessPayments bool `gorm:"column:can_process_payments;default:false"`
	CanPrescribe       bool `gorm:"column:can_prescribe;default:false"`
	CanSetPrices       bool `gorm:"column:can_set_prices;default:false"`
	CanArchiveData     bool `gorm:"column:can_archive_data;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;uniqueIndex;not null"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FullName     string     `gorm:"column:full_name"`
	RoleID       int64      `gorm:"column:role_id;not null"`
	Role         *Role      `gorm:"foreignKey:RoleID"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	IsSuperAdmin bool       `gorm:"column:is_super_admin;default:false"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
