package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/domain/user"
	"github.com/fintrackhq/fintrack/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, errors.New("no user")
}

func newRouterWithAuth(verifier middlewares.TokenVerifier, users middlewares.UserResolver) *gin.Engine {
	mw := middlewares.NewAuthMiddleware(verifier, users)

	r := gin.New()
	r.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewManager("test-secret", 15*time.Minute, time.Hour)

	validToken, err := manager.GenerateAccessToken("user-1", "ann@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	knownUser := &fakeUsers{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			if id == "user-1" {
				return user.User{ID: "user-1", Email: "ann@example.com", Name: "Ann"}, nil
			}
			return user.User{}, errors.New("not found")
		},
	}

	tests := []struct {
		name       string
		header     string
		users      middlewares.UserResolver
		wantStatus int
	}{
		{
			name:       "missing_header",
			header:     "",
			users:      knownUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not_bearer",
			header:     "Basic abc123",
			users:      knownUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty_token",
			header:     "Bearer ",
			users:      knownUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage_token",
			header:     "Bearer not-a-jwt",
			users:      knownUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid_token_deleted_user",
			header: "Bearer " + validToken,
			users: &fakeUsers{
				getFn: func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, errors.New("not found")
				},
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid_token",
			header:     "Bearer " + validToken,
			users:      knownUser,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouterWithAuth(manager, tt.users)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	expiredManager := auth.NewManager("test-secret", -time.Minute, time.Hour)
	verifier := auth.NewManager("test-secret", 15*time.Minute, time.Hour)

	token, err := expiredManager.GenerateAccessToken("user-1", "ann@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := newRouterWithAuth(verifier, &fakeUsers{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}
