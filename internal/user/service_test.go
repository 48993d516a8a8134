package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/auth"
	userDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/user"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockRepository struct {
	usersByID   map[int64]*userDatamodel.User
	rolesByID   map[int64]*userDatamodel.Role
	nextUserID  int64
	nextRoleID  int64
	deactivated []int64
	deletedRole []int64
}

func newMockRepository() *mockRepository {
	m := &mockRepository{
		usersByID:  make(map[int64]*userDatamodel.User),
		rolesByID:  make(map[int64]*userDatamodel.Role),
		nextUserID: 1,
		nextRoleID: 1,
	}

	m.rolesByID[1] = &userDatamodel.Role{ID: 1, Name: "Receptionist", CanViewPatients: true}
	m.nextRoleID = 2

	m.usersByID[1] = &userDatamodel.User{
		ID:       1,
		Username: "alice",
		Email:    "alice@hospital.local",
		RoleID:   1,
		IsActive: true,
	}
	m.nextUserID = 2

	return m
}

func (m *mockRepository) GetByID(userID int64) (*userDatamodel.User, error) {
	if u, ok := m.usersByID[userID]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetByUsername(username string) (*userDatamodel.User, error) {
	for _, u := range m.usersByID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	for _, u := range m.usersByID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List() ([]userDatamodel.User, error) {
	out := make([]userDatamodel.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockRepository) Create(u *userDatamodel.User) error {
	u.ID = m.nextUserID
	m.nextUserID++
	m.usersByID[u.ID] = u
	return nil
}

func (m *mockRepository) Update(u *userDatamodel.User) error {
	m.usersByID[u.ID] = u
	return nil
}

func (m *mockRepository) SetActive(userID int64, active bool) error {
	u, ok := m.usersByID[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	if !active {
		m.deactivated = append(m.deactivated, userID)
	}
	return nil
}

func (m *mockRepository) GetRole(roleID int64) (*userDatamodel.Role, error) {
	if r, ok := m.rolesByID[roleID]; ok {
		return r, nil
	}
	return nil, ErrRoleNotFound
}

func (m *mockRepository) ListRoles() ([]userDatamodel.Role, error) {
	out := make([]userDatamodel.Role, 0, len(m.rolesByID))
	for _, r := range m.rolesByID {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRepository) CreateRole(r *userDatamodel.Role) error {
	r.ID = m.nextRoleID
	m.nextRoleID++
	m.rolesByID[r.ID] = r
	return nil
}

func (m *mockRepository) UpdateRole(r *userDatamodel.Role) error {
	m.rolesByID[r.ID] = r
	return nil
}

func (m *mockRepository) DeleteRole(roleID int64) error {
	delete(m.rolesByID, roleID)
	m.deletedRole = append(m.deletedRole, roleID)
	return nil
}

func (m *mockRepository) CountUsersWithRole(roleID int64) (int64, error) {
	var count int64
	for _, u := range m.usersByID {
		if u.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service *Service
		repo    *mockRepository
		actor   *auth.User
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		policy := auth.NewPasswordPolicy(internal.SecurityConfig{
			MinPasswordLength:           8,
			MaxPasswordLength:           128,
			PasswordRequireUppercase:    true,
			PasswordRequireLowercase:    true,
			PasswordRequireDigits:       true,
			PasswordRequireSpecialChars: true,
		})
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(repo, policy, nil, bcrypt.MinCost, logger)
		actor = &auth.User{ID: 99, Username: "admin", IsSuperAdmin: true}
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should create an active user with a hashed password", func() {
			// When
			created, err := service.Create(context.Background(), CreateUserDTO{
				Username: "bob",
				Email:    "bob@hospital.local",
				FullName: "Bob Tan",
				Password: "Abcdefg1!",
				RoleID:   1,
			}, actor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.IsActive).To(gomega.BeTrue())

			stored, err := repo.GetByUsername("bob")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(stored.PasswordHash).ToNot(gomega.Equal("Abcdefg1!"))
			gomega.Expect(auth.VerifyPassword(stored.PasswordHash, "Abcdefg1!")).To(gomega.Succeed())
		})

		ginkgo.It("should reject a password that fails the policy", func() {
			// When: 7 characters
			_, err := service.Create(context.Background(), CreateUserDTO{
				Username: "bob",
				Email:    "bob@hospital.local",
				Password: "Abc123!",
				RoleID:   1,
			}, actor)

			// Then
			var verr auth.ValidationError
			gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
			gomega.Expect(verr.Msg).To(gomega.Equal("Password must be at least 8 characters long"))
		})

		ginkgo.It("should reject a duplicate username", func() {
			_, err := service.Create(context.Background(), CreateUserDTO{
				Username: "alice",
				Email:    "other@hospital.local",
				Password: "Abcdefg1!",
				RoleID:   1,
			}, actor)

			gomega.Expect(err).To(gomega.Equal(ErrDuplicateUsername))
		})

		ginkgo.It("should reject a duplicate email", func() {
			_, err := service.Create(context.Background(), CreateUserDTO{
				Username: "bob",
				Email:    "alice@hospital.local",
				Password: "Abcdefg1!",
				RoleID:   1,
			}, actor)

			gomega.Expect(err).To(gomega.Equal(ErrDuplicateEmail))
		})

		ginkgo.It("should reject an unknown role", func() {
			_, err := service.Create(context.Background(), CreateUserDTO{
				Username: "bob",
				Email:    "bob@hospital.local",
				Password: "Abcdefg1!",
				RoleID:   42,
			}, actor)

			gomega.Expect(err).To(gomega.Equal(ErrRoleNotFound))
		})

		ginkgo.It("should reject an incomplete request", func() {
			_, err := service.Create(context.Background(), CreateUserDTO{
				Username: "bob",
			}, actor)

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Deactivate", func() {
		ginkgo.It("should soft-disable the account instead of deleting it", func() {
			// When
			err := service.Deactivate(context.Background(), 1, actor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.deactivated).To(gomega.ContainElement(int64(1)))

			stored, err := repo.GetByID(1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(stored.IsActive).To(gomega.BeFalse())
		})

		ginkgo.It("should fail for an unknown user", func() {
			err := service.Deactivate(context.Background(), 42, actor)

			gomega.Expect(err).To(gomega.Equal(ErrNotFound))
		})
	})

	ginkgo.Describe("role management", func() {
		ginkgo.It("should create a role from its flags", func() {
			// When
			role, err := service.CreateRole(context.Background(), RoleDTO{
				Name:            "Doctor",
				CanViewPatients: true,
				CanPrescribe:    true,
			}, actor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(role.CanPrescribe).To(gomega.BeTrue())
			gomega.Expect(role.CanManageUsers).To(gomega.BeFalse())
		})

		ginkgo.It("should update a role's flags in place", func() {
			// When
			updated, err := service.UpdateRole(context.Background(), 1, RoleDTO{
				Name:            "Receptionist",
				CanViewPatients: true,
				CanAddPatients:  true,
			}, actor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.ID).To(gomega.Equal(int64(1)))
			gomega.Expect(updated.CanAddPatients).To(gomega.BeTrue())
		})

		ginkgo.It("should refuse to delete a role that users still hold", func() {
			// Given: alice holds role 1
			err := service.DeleteRole(context.Background(), 1, actor)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrRoleInUse))
			gomega.Expect(repo.deletedRole).To(gomega.BeEmpty())
		})

		ginkgo.It("should delete an unreferenced role", func() {
			// Given
			role, err := service.CreateRole(context.Background(), RoleDTO{Name: "Temp"}, actor)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.DeleteRole(context.Background(), role.ID, actor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.deletedRole).To(gomega.ContainElement(role.ID))
		})

		ginkgo.It("should fail to delete an unknown role", func() {
			err := service.DeleteRole(context.Background(), 42, actor)

			gomega.Expect(err).To(gomega.Equal(ErrRoleNotFound))
		})
	})
})
