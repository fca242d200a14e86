package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/domain/user"
	"github.com/fintrackhq/fintrack/internal/http/middlewares"
	"github.com/fintrackhq/fintrack/internal/repo/postgres"
	"github.com/fintrackhq/fintrack/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) (user.User, error)
}

// SessionIssuer hides the refresh-token persistence behind a small
// interface so handler tests can fake it.
type SessionIssuer interface {
	Issue(ctx context.Context, userID, email string) (access, refreshRaw string, refreshExpiresAt time.Time, err error)
	Refresh(ctx context.Context, raw string) (access, newRaw string, newExpiresAt time.Time, err error)
	Revoke(ctx context.Context, raw string) error
}

type AuthHandler struct {
	users    UserReader
	writer   UserWriter
	sessions SessionIssuer
	cfg      config.Config
}

func NewAuthHandler(users UserReader, writer UserWriter, sessions SessionIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		writer:   writer,
		sessions: sessions,
		cfg:      cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()

	u, err := h.writer.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// same outcome whether the email or the password is wrong
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	access, refreshRaw, refreshExpiresAt, err := h.sessions.Issue(cctx, foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, refreshRaw, refreshExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"user":        foundUser,
		"accessToken": access,
	})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		RespondUnauthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	access, newRaw, newExpiresAt, err := h.sessions.Refresh(cctx, raw)

	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			RespondUnauthorized(ctx, "invalid_refresh", "Invalid refresh token")
			return
		}

		RespondInternal(ctx, "Could not refresh session")
		return
	}

	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": access,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err == nil && raw != "" {
		cctx, cancel := config.WithTimeout(3 * time.Second)
		defer cancel()

		_ = h.sessions.Revoke(cctx, raw)
	}

	// always clear the cookie, even when nothing was revoked
	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Me returns the identity the auth gateway resolved for this request.
func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

const refreshCookieName = "refresh_token"

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		refreshCookieName,
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		refreshCookieName,
		"",
		-1,
		"/auth",
		"",
		secure,
		true,
	)
}
