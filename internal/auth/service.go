package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nandasafiq/hospital-management/internal/audit"
)

// Service orchestrates a login attempt: lock check, credential check, active
// check, then session issuance. Every terminal failure path emits exactly one
// audit event and maps to one of the package sentinels; the sentinel message
// shown to users is always less specific than the audit detail.
type Service struct {
	repo       RepositoryAPI
	tracker    *FailedAttemptTracker
	policy     PasswordPolicy
	tokens     TokenGeneratorAPI
	resolver   *Resolver
	audit      audit.Recorder
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo RepositoryAPI,
	tracker *FailedAttemptTracker,
	policy PasswordPolicy,
	tokens TokenGeneratorAPI,
	resolver *Resolver,
	auditor audit.Recorder,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:       repo,
		tracker:    tracker,
		policy:     policy,
		tokens:     tokens,
		resolver:   resolver,
		audit:      auditor,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) PasswordPolicy() PasswordPolicy {
	return s.policy
}

func (s *Service) Tracker() *FailedAttemptTracker {
	return s.tracker
}

// Login runs the per-attempt state machine. A locked account fails before any
// credential comparison, so probing a locked account leaks nothing about the
// password or the username's existence.
func (s *Service) Login(ctx context.Context, dto LoginDTO, meta LoginMeta) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if s.tracker.IsLocked(dto.Username, meta.IPAddress) {
		s.recordEvent(ctx, audit.EventAccountLocked,
			fmt.Sprintf("Login attempt for locked account: %s", dto.Username), nil, meta)
		return nil, ErrAccountLocked
	}

	user, err := s.repo.FindUserByUsername(dto.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if user == nil || VerifyPassword(user.PasswordHash, dto.Password) != nil {
		return nil, s.failCredentialCheck(ctx, dto.Username, user, meta)
	}

	if !user.IsActive {
		// Correct credentials, so this does not count toward lockout.
		s.recordEvent(ctx, audit.EventLoginDisabledAccount,
			fmt.Sprintf("Login attempt for disabled account: %s", dto.Username), &user.ID, meta)
		return nil, ErrAccountDisabled
	}

	s.tracker.Clear(dto.Username, meta.IPAddress)

	loginAt := s.now()
	if err := s.repo.UpdateLastLogin(user.ID, loginAt); err != nil {
		// Last-login is bookkeeping; a write failure must not reject a valid login.
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &loginAt
	}

	token, expiresAt, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	s.recordEvent(ctx, audit.EventLoginSuccess,
		fmt.Sprintf("Successful login: %s", dto.Username), &user.ID, meta)

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// failCredentialCheck handles both unknown-username and wrong-password
// failures. The audit detail distinguishes the two; the returned error never
// does.
func (s *Service) failCredentialCheck(ctx context.Context, username string, user *User, meta LoginMeta) error {
	locked := s.tracker.RecordFailure(username, meta.IPAddress)
	if locked {
		s.recordEvent(ctx, audit.EventAccountLocked,
			fmt.Sprintf("Account locked after repeated failed attempts: %s", username), nil, meta)
		return ErrAccountLocked
	}

	detail := fmt.Sprintf("Failed login attempt: %s (wrong password)", username)
	if user == nil {
		detail = fmt.Sprintf("Failed login attempt: %s (unknown username)", username)
	}
	s.recordEvent(ctx, audit.EventLoginFailed, detail, nil, meta)

	return ErrInvalidCredentials
}

// Logout records the event; session invalidation itself is the web layer's
// concern since tokens are stateless.
func (s *Service) Logout(ctx context.Context, user *User, meta LoginMeta) {
	if user == nil {
		return
	}
	s.recordEvent(ctx, audit.EventLogout,
		fmt.Sprintf("User logged out: %s", user.Username), &user.ID, meta)
}

// ChangePassword verifies the current password, applies the strength policy
// to the new one, and re-hashes.
func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO, meta LoginMeta) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}

	if VerifyPassword(user.PasswordHash, dto.CurrentPassword) != nil {
		return ErrPasswordMismatch
	}

	if ok, reason := s.policy.Validate(dto.NewPassword); !ok {
		return ValidationError{Msg: reason}
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePasswordHash(userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.recordEvent(ctx, audit.EventPasswordChanged,
		fmt.Sprintf("Password changed: %s", user.Username), &user.ID, meta)
	return nil
}

func (s *Service) ValidateSessionToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

func (s *Service) GetUserByID(userID int64) (*User, error) {
	return s.repo.GetUserByID(userID)
}

func (s *Service) recordEvent(ctx context.Context, eventType, detail string, userID *int64, meta LoginMeta) {
	s.audit.Record(ctx, audit.Entry{
		Type:      eventType,
		Detail:    detail,
		UserID:    userID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Endpoint:  meta.Endpoint,
	})
}

// SessionTokenGenerator signs short session tokens with HS256. The session ID
// claim is a fresh UUID per login.
type SessionTokenGenerator struct {
	Secret     []byte
	SessionTTL time.Duration
}

func NewSessionTokenGenerator(secret string, ttl time.Duration) *SessionTokenGenerator {
	return &SessionTokenGenerator{
		Secret:     []byte(secret),
		SessionTTL: ttl,
	}
}

func (g *SessionTokenGenerator) GenerateSessionToken(user *User) (string, time.Time, error) {
	expiresAt := time.Now().Add(g.SessionTTL)

	claims := &Claims{
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(g.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (g *SessionTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
