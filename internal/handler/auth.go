package handler

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/abdusco/linkhub/internal/auth"
	"github.com/abdusco/linkhub/internal/metrics"
	"github.com/abdusco/linkhub/internal/repo"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const minPasswordLength = 6

type credentialVerifier interface {
	Verify(ctx context.Context, password string) (bool, error)
	ChangePassword(ctx context.Context, current, next string) (bool, error)
}

type AuthHandler struct {
	credentials credentialVerifier
	sessions    *auth.SessionIssuer
	metrics     *metrics.Metrics
}

func NewAuthHandler(credentials credentialVerifier, sessions *auth.SessionIssuer, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		sessions:    sessions,
		metrics:     m,
	}
}

type LoginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /auth/login: checks the admin password and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Password is required")
	}

	valid, err := h.credentials.Verify(ctx, req.Password)
	if err != nil {
		return internalError(err, "Login failed")
	}
	h.metrics.RecordLogin(valid)

	if !valid {
		log.Warn().Str("ip", c.RealIP()).Msg("invalid admin password")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	}

	cookie, err := h.sessions.Cookie(repo.AdminUsername)
	if err != nil {
		return internalError(err, "Login failed")
	}
	c.SetCookie(cookie)

	log.Info().Str("ip", c.RealIP()).Msg("admin logged in")
	return okMessage(c, "Login successful")
}

// Logout handles POST /auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.ExpiredCookie())
	return okMessage(c, "Logout successful")
}

type VerifyResponse struct {
	Success       bool   `json:"success"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// Verify handles GET /auth/verify. It always answers 200.
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, err := h.sessions.FromRequest(c)
	if err != nil {
		return c.JSON(http.StatusOK, VerifyResponse{})
	}
	return c.JSON(http.StatusOK, VerifyResponse{
		Success:       true,
		Authenticated: true,
		Username:      claims.Username,
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /auth/change-password. It runs behind auth.RequireSession.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Current password and new password are required")
	}
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, "New password must be at least 6 characters")
	}

	changed, err := h.credentials.ChangePassword(ctx, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return internalError(err, "Failed to change password")
	}
	if !changed {
		return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
	}

	return okMessage(c, "Password changed successfully")
}
