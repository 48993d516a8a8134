package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/nandasafiq/hospital-management/internal/transport"
	"github.com/nandasafiq/hospital-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// metaFromRequest extracts the source address and request attributes the
// security core keys on.
func metaFromRequest(r *http.Request) LoginMeta {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return LoginMeta{
		IPAddress: host,
		UserAgent: r.UserAgent(),
		Endpoint:  r.URL.Path,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.Login(r.Context(), dto, metaFromRequest(r))
	if err != nil {
		// The response strings here are deliberately generic; the audit
		// trail carries the specific reason.
		switch {
		case errors.Is(err, ErrAccountLocked):
			h.WriteError(w, http.StatusForbidden, "Account is temporarily locked due to multiple failed attempts. Please try again later.")
		case errors.Is(err, ErrAccountDisabled):
			h.WriteError(w, http.StatusForbidden, "Account is disabled. Please contact administrator.")
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			var verr ValidationError
			if errors.As(err, &verr) {
				h.WriteError(w, http.StatusBadRequest, verr.Error())
				return
			}
			h.Logger.Error("login failed", "error", err)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if svc, ok := h.Service.(*Service); ok {
		svc.Logout(r.Context(), user, metaFromRequest(r))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(r.Context(), user.ID, dto, metaFromRequest(r)); err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			h.WriteError(w, http.StatusBadRequest, "current password is incorrect")
		default:
			var verr ValidationError
			if errors.As(err, &verr) {
				h.WriteError(w, http.StatusBadRequest, verr.Error())
				return
			}
			h.Logger.Error("password change failed", "user_id", user.ID, "error", err)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer session token and loads the principal,
// with its role, into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateSessionToken(token)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := h.Service.GetUserByID(claims.UserID)
		if err != nil {
			h.Logger.Error("auth middleware: failed to load user", "user_id", claims.UserID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}

		if !user.IsActive {
			h.WriteError(w, http.StatusUnauthorized, "account disabled")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}
