package user

import (
	errors "github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Password     string `json:"password"`
	RoleID       int64  `json:"role_id"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	v.Field("role_id", d.RoleID).Required()
	return v.Validate()
}

type UpdateUserDTO struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	RoleID   *int64  `json:"role_id,omitempty"`
}

type RoleDTO struct {
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

func (d RoleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(64)
	return v.Validate()
}
