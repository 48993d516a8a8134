package auth

import "log/slog"

// Permission is the closed set of permission kinds. Route handlers pass the
// string form at the transport boundary; everything past ParsePermission
// works with the enum so a typo cannot silently grant or deny access.
type Permission string

const (
	PermissionViewPatients    Permission = "can_view_patients"
	PermissionAddPatients     Permission = "can_add_patients"
	PermissionEditPatients    Permission = "can_edit_patients"
	PermissionViewPharmacy    Permission = "can_view_pharmacy"
	PermissionManageInventory Permission = "can_manage_inventory"
	PermissionSellMedicine    Permission = "can_sell_medicine"
	PermissionViewReports     Permission = "can_view_reports"
	PermissionManageUsers     Permission = "can_manage_users"
	PermissionViewLogs        Permission = "can_view_logs"
	PermissionProcessPayments Permission = "can_process_payments"
	PermissionPrescribe       Permission = "can_prescribe"
	PermissionSetPrices       Permission = "can_set_prices"
	PermissionArchiveData     Permission = "can_archive_data"
)

// AdminRoleName is the reserved role that IsAdmin recognizes in addition to
// the super-admin flag.
const AdminRoleName = "Admin"

var allPermissions = map[Permission]struct{}{
	PermissionViewPatients:    {},
	PermissionAddPatients:     {},
	PermissionEditPatients:    {},
	PermissionViewPharmacy:    {},
	PermissionManageInventory: {},
	PermissionSellMedicine:    {},
	PermissionViewReports:     {},
	PermissionManageUsers:     {},
	PermissionViewLogs:        {},
	PermissionProcessPayments: {},
	PermissionPrescribe:       {},
	PermissionSetPrices:       {},
	PermissionArchiveData:     {},
}

// ParsePermission maps an external permission identifier onto the enum.
// Unknown names fail here, so callers resolve them to a denial rather than an
// accidental grant.
func ParsePermission(name string) (Permission, bool) {
	p := Permission(name)
	_, ok := allPermissions[p]
	return p, ok
}

// Resolver is the single decision point for permission checks. The
// super-admin override lives here and nowhere else.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// HasPermission reports whether the user holds the permission. Super-admins
// pass unconditionally, before any role lookup. A user with a missing role
// reference is denied everything; that is a data-integrity problem to flag,
// not an error to raise.
func (r *Resolver) HasPermission(u *User, p Permission) bool {
	if u == nil {
		return false
	}
	if u.IsSuperAdmin {
		return true
	}
	if u.Role == nil {
		r.logger.Error("user has no role assigned, denying all permissions",
			"user_id", u.ID,
			"username", u.Username)
		return false
	}

	switch p {
	case PermissionViewPatients:
		return u.Role.CanViewPatients
	case PermissionAddPatients:
		return u.Role.CanAddPatients
	case PermissionEditPatients:
		return u.Role.CanEditPatients
	case PermissionViewPharmacy:
		return u.Role.CanViewPharmacy
	case PermissionManageInventory:
		return u.Role.CanManageInventory
	case PermissionSellMedicine:
		return u.Role.CanSellMedicine
	case PermissionViewReports:
		return u.Role.CanViewReports
	case PermissionManageUsers:
		return u.Role.CanManageUsers
	case PermissionViewLogs:
		return u.Role.CanViewLogs
	case PermissionProcessPayments:
		return u.Role.CanProcessPayments
	case PermissionPrescribe:
		return u.Role.CanPrescribe
	case PermissionSetPrices:
		return u.Role.CanSetPrices
	case PermissionArchiveData:
		return u.Role.CanArchiveData
	default:
		return false
	}
}

// HasPermissionName is the string-keyed entry point for route handlers.
// Unknown permission names resolve to false, never to an error.
func (r *Resolver) HasPermissionName(u *User, name string) bool {
	p, ok := ParsePermission(name)
	if !ok {
		r.logger.Warn("unknown permission name, denying", "permission", name)
		return false
	}
	return r.HasPermission(u, p)
}

// IsAdmin is a convenience: true for super-admins and for users holding the
// reserved Admin role.
func (r *Resolver) IsAdmin(u *User) bool {
	if u == nil {
		return false
	}
	if u.IsSuperAdmin {
		return true
	}
	return u.Role != nil && u.Role.Name == AdminRoleName
}
