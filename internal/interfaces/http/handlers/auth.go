package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/config"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/infrastructure/supabase"
	"ideas-backend/pkg/api"

	"go.uber.org/zap"
)

// AuthService is the GoTrue proxy behind the auth endpoints.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.SignUpResult, error)
	Refresh(ctx context.Context, refreshToken string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	service AuthService
	cfg     config.Auth
	logger  *zap.Logger
}

func NewAuthHandler(service AuthService, cfg config.Auth, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, cfg: cfg, logger: logger}
}

// SignUp handles POST /api/auth/signup.
// @Summary Register with email and password
// @Description Returns a session when the project confirms emails automatically, otherwise only the user.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body api.CredentialsRequest true "Credentials"
// @Success 201 {object} supabase.SignUpResult
// @Failure 400 {object} api.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err, "sign up", "User")
		return
	}
	if result.Session != nil {
		h.setSessionCookie(w, result.Session)
	}
	api.Success(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login.
// @Summary Sign in with email and password
// @Description Also sets the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body api.CredentialsRequest true "Credentials"
// @Success 200 {object} supabase.Session
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, err, "sign in")
		return
	}
	h.setSessionCookie(w, session)
	api.Success(w, http.StatusOK, session)
}

// Refresh handles POST /api/auth/refresh.
// @Summary Exchange a refresh token for a new session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body api.RefreshRequest true "Refresh token"
// @Success 200 {object} supabase.Session
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondAuthError(w, r, err, "refresh session")
		return
	}
	h.setSessionCookie(w, session)
	api.Success(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout.
// @Summary Sign out
// @Description Revokes the session when one is present and clears the session cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} api.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r, h.cfg.SessionCookie); token != "" {
		if err := h.service.SignOut(r.Context(), token); err != nil && !apperrors.IsUnauthorized(err) {
			h.logger.Warn("Sign out failed", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "Signed out successfully"})
}

// User handles GET /api/auth/user.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.User
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/user [get]
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, currentUser(r))
}

// respondAuthError keeps GoTrue's rejection message, e.g. "Invalid login credentials".
func (h *AuthHandler) respondAuthError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if apperrors.IsUnauthorized(err) {
		message := auth.MessageAuthenticationFailed
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
		api.Error(w, http.StatusUnauthorized, message)
		return
	}
	respondError(w, r, h.logger, err, action, "User")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *supabase.Session) {
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour / time.Second)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
