package auth

import (
	"context"
	"time"

	"github.com/fintrackhq/fintrack/internal/repo/postgres"
)

// Sessions owns the refresh-token lifecycle: issue on login, rotate on
// refresh, revoke on logout. Access tokens stay stateless; only the
// refresh side touches storage.
type Sessions struct {
	jwt  *Manager
	repo *postgres.RefreshTokensRepo
}

func NewSessions(jwt *Manager, repo *postgres.RefreshTokensRepo) *Sessions {
	return &Sessions{jwt: jwt, repo: repo}
}

// Issue creates an access token plus a persisted refresh token.
func (s *Sessions) Issue(ctx context.Context, userID, email string) (access, refreshRaw string, refreshExpiresAt time.Time, err error) {
	access, err = s.jwt.GenerateAccessToken(userID, email)

	if err != nil {
		return "", "", time.Time{}, err
	}

	refreshRaw, jti, refreshExpiresAt, err := s.jwt.GenerateRefreshToken(userID, email)

	if err != nil {
		return "", "", time.Time{}, err
	}

	err = s.store(ctx, userID, jti, refreshRaw, refreshExpiresAt)

	if err != nil {
		return "", "", time.Time{}, err
	}

	return access, refreshRaw, refreshExpiresAt, nil
}

// Refresh rotates a presented refresh token under a row lock and
// returns a fresh access/refresh pair. Any token problem comes back as
// ErrInvalidToken.
func (s *Sessions) Refresh(ctx context.Context, raw string) (access, newRaw string, newExpiresAt time.Time, err error) {
	claims, err := s.jwt.VerifyRefreshToken(raw)

	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}

	tx, err := s.repo.BeginTx(ctx)

	if err != nil {
		return "", "", time.Time{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	row, err := s.repo.GetForUpdate(ctx, tx, claims.JTI)

	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}

	if row.RevokedAt != nil || time.Now().UTC().After(row.ExpiresAt) {
		return "", "", time.Time{}, ErrInvalidToken
	}

	// hash must match the presented token (prevents token substitution)
	if row.TokenHash != s.jwt.HashRefreshToken(raw) {
		return "", "", time.Time{}, ErrInvalidToken
	}

	newRaw, newJTI, newExpiresAt, err := s.jwt.GenerateRefreshToken(row.UserID, claims.Email)

	if err != nil {
		return "", "", time.Time{}, err
	}

	// revoke old, insert new
	err = s.repo.Revoke(ctx, tx, row.ID, &newJTI)

	if err != nil {
		return "", "", time.Time{}, err
	}

	err = s.repo.Create(ctx, tx, postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    row.UserID,
		TokenHash: s.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		return "", "", time.Time{}, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return "", "", time.Time{}, err
	}

	access, err = s.jwt.GenerateAccessToken(row.UserID, claims.Email)

	if err != nil {
		return "", "", time.Time{}, err
	}

	return access, newRaw, newExpiresAt, nil
}

// Revoke invalidates a presented refresh token. Idempotent; an already
// invalid token is not an error for logout purposes.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	claims, err := s.jwt.VerifyRefreshToken(raw)

	if err != nil {
		return nil
	}

	tx, err := s.repo.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.repo.Revoke(ctx, tx, claims.JTI, nil); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Sessions) store(ctx context.Context, userID, jti, raw string, expiresAt time.Time) error {
	tx, err := s.repo.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = s.repo.Create(ctx, tx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    userID,
		TokenHash: s.jwt.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
