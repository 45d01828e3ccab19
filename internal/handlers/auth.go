package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curriculo/apiserver/internal/auth"
	"github.com/curriculo/apiserver/internal/services"
	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

const roleNameCompany = "Company"

// TokenIssuer covers the token operations the login flow needs. The
// production implementation is store.TokenRepository.
type TokenIssuer interface {
	Create(ctx context.Context, userID int) (types.Token, error)
	GetByUserID(ctx context.Context, userID int) (types.Token, error)
	Rotate(ctx context.Context, userID int, stale string) (types.Token, error)
	Delete(ctx context.Context, value string) error
}

// SessionPurger removes a user's live web sessions before a credential
// rotation. The production implementation is store.SessionRepository.
type SessionPurger interface {
	PurgeActive(ctx context.Context, userID int) (int64, error)
}

// AuthHandler provides HTTP handlers for login and the authentication
// middleware every protected route runs behind.
type AuthHandler struct {
	authenticator  *auth.Authenticator
	codes          *auth.CodeIssuer
	tokens         TokenIssuer
	sessions       SessionPurger
	userService    *services.UserService
	companyService *services.CompanyService
}

func NewAuthHandler(
	authenticator *auth.Authenticator,
	codes *auth.CodeIssuer,
	tokens TokenIssuer,
	sessions SessionPurger,
	userService *services.UserService,
	companyService *services.CompanyService,
) *AuthHandler {
	return &AuthHandler{
		authenticator:  authenticator,
		codes:          codes,
		tokens:         tokens,
		sessions:       sessions,
		userService:    userService,
		companyService: companyService,
	}
}

// AuthRouter registers the login route.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/login", handler.Login)
}

// LoginRequest carries the login credentials: the account email and the
// one-time access code sent to it.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token     string         `json:"token"`
	User      types.User     `json:"user"`
	LastLogin time.Time      `json:"last_login"`
	Company   *types.Company `json:"company,omitempty"`
}

// Login exchanges an email plus access code for a token. The first login
// creates the token and answers 201; later logins purge the user's web
// sessions, rotate the token and answer 200.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "El email es requerido")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "El email es requerido")
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		writeMessage(w, http.StatusBadRequest, "El token de acceso es requerido")
		return
	}

	ctx := r.Context()
	user, err := h.userService.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "No hay usuario con email dado")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	}

	if !h.codes.Verify(user, req.Password) {
		writeMessage(w, http.StatusBadRequest, "El token de acceso no es el correcto o ha expirado, solicite uno nuevo")
		return
	}
	if user.StatusDelete {
		writeMessage(w, http.StatusBadRequest, "Este usuario está restringido de la plataforma")
		return
	}

	status := http.StatusOK
	var token types.Token
	existing, err := h.tokens.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		token, err = h.tokens.Create(ctx, user.ID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
			return
		}
		status = http.StatusCreated
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	default:
		if _, err := h.sessions.PurgeActive(ctx, user.ID); err != nil {
			writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
			return
		}
		token, err = h.tokens.Rotate(ctx, user.ID, existing.Value)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
			return
		}
	}

	// Moving last-login retires every access code issued before this
	// moment, the one just presented included.
	now := time.Now()
	if err := h.userService.UpdateLastLogin(ctx, user.ID, now); err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	}
	user.LastLogin = &now

	resp := LoginResponse{Token: token.Value, User: user, LastLogin: now}
	if user.Role.Name == roleNameCompany {
		company, err := h.companyService.GetByCoordinate(ctx, user.ID)
		if err == nil {
			resp.Company = &company
		} else if !errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
			return
		}
	}

	writeJSON(w, status, resp)
}

// RequireAuth resolves the Authorization header to a user and stores it
// in the request context. Every failure answers the same 401 body.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				writeMessage(w, http.StatusUnauthorized, "Token invalido")
				return
			}
			writeMessage(w, http.StatusInternalServerError, "No se pudo autenticar")
			return
		}
		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePrivileged gates a route to privileged roles. Must run after
// RequireAuth.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token invalido")
			return
		}
		if !user.Role.IsPrivileged {
			writeMessage(w, http.StatusBadRequest, "El usuario no tiene el rol para esta acción.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
