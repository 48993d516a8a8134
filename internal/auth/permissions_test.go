package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Resolver", func() {
	var resolver *Resolver

	ginkgo.BeforeEach(func() {
		resolver = NewResolver(quietLogger())
	})

	ginkgo.Describe("HasPermission", func() {
		ginkgo.Context("when the user is a super admin", func() {
			ginkgo.It("should grant every permission regardless of role flags", func() {
				// Given: a role with nothing enabled
				user := &User{
					ID:           1,
					Username:     "root",
					IsSuperAdmin: true,
					Role:         &Role{Name: "Receptionist"},
				}

				// Then
				for p := range allPermissions {
					gomega.Expect(resolver.HasPermission(user, p)).To(gomega.BeTrue())
				}
			})

			ginkgo.It("should grant permissions even without a role", func() {
				user := &User{ID: 1, Username: "root", IsSuperAdmin: true}

				gomega.Expect(resolver.HasPermission(user, PermissionManageUsers)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the user has a role", func() {
			ginkgo.It("should follow the role flag for each permission", func() {
				// Given
				user := &User{
					ID:       2,
					Username: "recept",
					Role: &Role{
						Name:               "Receptionist",
						CanViewPatients:    true,
						CanAddPatients:     true,
						CanProcessPayments: true,
					},
				}

				// Then
				gomega.Expect(resolver.HasPermission(user, PermissionViewPatients)).To(gomega.BeTrue())
				gomega.Expect(resolver.HasPermission(user, PermissionAddPatients)).To(gomega.BeTrue())
				gomega.Expect(resolver.HasPermission(user, PermissionProcessPayments)).To(gomega.BeTrue())
				gomega.Expect(resolver.HasPermission(user, PermissionManageUsers)).To(gomega.BeFalse())
				gomega.Expect(resolver.HasPermission(user, PermissionViewLogs)).To(gomega.BeFalse())
				gomega.Expect(resolver.HasPermission(user, PermissionPrescribe)).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("when the user has no role", func() {
			ginkgo.It("should deny everything", func() {
				user := &User{ID: 3, Username: "orphan"}

				for p := range allPermissions {
					gomega.Expect(resolver.HasPermission(user, p)).To(gomega.BeFalse())
				}
			})
		})

		ginkgo.Context("when the user is nil", func() {
			ginkgo.It("should deny", func() {
				gomega.Expect(resolver.HasPermission(nil, PermissionViewPatients)).To(gomega.BeFalse())
			})
		})
	})

	ginkgo.Describe("HasPermissionName", func() {
		ginkgo.It("should resolve known permission names", func() {
			// Given
			user := &User{
				ID:   4,
				Role: &Role{Name: "Pharmacist", CanViewPharmacy: true},
			}

			// Then
			gomega.Expect(resolver.HasPermissionName(user, "can_view_pharmacy")).To(gomega.BeTrue())
			gomega.Expect(resolver.HasPermissionName(user, "can_manage_users")).To(gomega.BeFalse())
		})

		ginkgo.It("should deny unknown permission names", func() {
			// Given: a super admin, who would pass any known check
			user := &User{ID: 5, IsSuperAdmin: false, Role: &Role{Name: "Admin", CanManageUsers: true}}

			// Then
			gomega.Expect(resolver.HasPermissionName(user, "can_delete_everything")).To(gomega.BeFalse())
			gomega.Expect(resolver.HasPermissionName(user, "")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ParsePermission", func() {
		ginkgo.It("should accept every defined permission", func() {
			for p := range allPermissions {
				parsed, ok := ParsePermission(string(p))
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(parsed).To(gomega.Equal(p))
			}
		})

		ginkgo.It("should reject names outside the set", func() {
			_, ok := ParsePermission("can_fly")
			gomega.Expect(ok).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("IsAdmin", func() {
		ginkgo.It("should recognize super admins", func() {
			gomega.Expect(resolver.IsAdmin(&User{IsSuperAdmin: true})).To(gomega.BeTrue())
		})

		ginkgo.It("should recognize holders of the Admin role", func() {
			gomega.Expect(resolver.IsAdmin(&User{Role: &Role{Name: "Admin"}})).To(gomega.BeTrue())
		})

		ginkgo.It("should deny other roles and nil users", func() {
			gomega.Expect(resolver.IsAdmin(&User{Role: &Role{Name: "Doctor"}})).To(gomega.BeFalse())
			gomega.Expect(resolver.IsAdmin(nil)).To(gomega.BeFalse())
		})
	})
})
