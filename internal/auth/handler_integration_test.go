package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/auth"
	"github.com/nandasafiq/hospital-management/internal/core/slidingwindow"
)

type stubRepository struct {
	users map[string]*auth.User
}

func (s *stubRepository) FindUserByUsername(username string) (*auth.User, error) {
	if u, ok := s.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, auth.ErrUserNotFound
}

func (s *stubRepository) GetUserByID(userID int64) (*auth.User, error) {
	for _, u := range s.users {
		if u.ID == userID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *stubRepository) UpdateLastLogin(int64, time.Time) error { return nil }
func (s *stubRepository) UpdatePasswordHash(int64, string) error { return nil }

var _ = Describe("Auth Handler Integration", func() {
	var (
		handler *auth.Handler
		service *auth.Service
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo := &stubRepository{
			users: map[string]*auth.User{
				"alice": {
					ID:           1,
					Username:     "alice",
					Email:        "alice@hospital.local",
					PasswordHash: string(hash),
					IsActive:     true,
					Role:         &auth.Role{Name: "Receptionist", CanViewPatients: true},
				},
				"carol": {
					ID:           3,
					Username:     "carol",
					PasswordHash: string(hash),
					IsActive:     false,
				},
			},
		}

		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		cfg := internal.SecurityConfig{
			AccountLockoutThreshold: 5,
			AccountLockoutDuration:  15 * time.Minute,
			MinPasswordLength:       8,
			MaxPasswordLength:       128,
		}
		tracker := auth.NewFailedAttemptTracker(cfg, slidingwindow.NewMemoryStore(), quiet)
		tokens := auth.NewSessionTokenGenerator("test-session-secret-at-least-32-chars", time.Hour)
		service = auth.NewService(repo, tracker, auth.NewPasswordPolicy(cfg), tokens, auth.NewResolver(quiet), nil, bcrypt.MinCost, quiet)
		handler = auth.NewHandler(service)
	})

	loginRequest := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.RemoteAddr = "10.0.0.5:51234"
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	Describe("POST /auth/login", func() {
		It("should return a session for valid credentials", func() {
			w := loginRequest(`{"username": "alice", "password": "correct_password"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			var session auth.Session
			Expect(json.NewDecoder(w.Body).Decode(&session)).To(Succeed())
			Expect(session.Token).NotTo(BeEmpty())
			Expect(session.User.Username).To(Equal("alice"))
		})

		It("should never include the password hash in the response", func() {
			w := loginRequest(`{"username": "alice", "password": "correct_password"}`)

			Expect(w.Body.String()).NotTo(ContainSubstring("password_hash"))
			Expect(w.Body.String()).NotTo(ContainSubstring("$2a$"))
		})

		It("should return 401 with a generic message for a wrong password", func() {
			w := loginRequest(`{"username": "alice", "password": "wrong"}`)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			var body map[string]string
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["error"]).To(Equal("Invalid username or password"))
		})

		It("should return the same 401 body for an unknown username", func() {
			w := loginRequest(`{"username": "mallory", "password": "whatever"}`)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			var body map[string]string
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["error"]).To(Equal("Invalid username or password"))
		})

		It("should return 403 once the account is locked", func() {
			for i := 0; i < 5; i++ {
				loginRequest(`{"username": "alice", "password": "wrong"}`)
			}

			w := loginRequest(`{"username": "alice", "password": "correct_password"}`)

			Expect(w.Code).To(Equal(http.StatusForbidden))

			var body map[string]string
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["error"]).To(ContainSubstring("temporarily locked"))
		})

		It("should return 403 for a disabled account", func() {
			w := loginRequest(`{"username": "carol", "password": "correct_password"}`)

			Expect(w.Code).To(Equal(http.StatusForbidden))

			var body map[string]string
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["error"]).To(ContainSubstring("disabled"))
		})

		It("should return 400 for a missing field", func() {
			w := loginRequest(`{"username": "alice"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 400 for a malformed body", func() {
			w := loginRequest(`{not json`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AuthMiddleware", func() {
		var protected http.Handler

		BeforeEach(func() {
			protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, ok := auth.UserFromContext(r.Context())
				Expect(ok).To(BeTrue())
				w.Write([]byte(user.Username))
			}))
		})

		It("should admit a request with a valid bearer token", func() {
			w := loginRequest(`{"username": "alice", "password": "correct_password"}`)
			var session auth.Session
			Expect(json.NewDecoder(w.Body).Decode(&session)).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("alice"))
		})

		It("should reject a request without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject a garbage token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer not.a.token")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
