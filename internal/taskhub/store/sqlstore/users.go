package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, name, email, password_hash, profile_picture, is_email_verified,
	last_login, mfa_enabled_at, mfa_secret, created_at, updated_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u                   domain.User
		lastLogin, mfaSince sql.NullTime
		mfaSecret           sql.NullString
	)
	err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.IsEmailVerified,
		&lastLogin, &mfaSince, &mfaSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.LastLogin = timePtr(lastLogin)
	u.MFAEnabledAt = timePtr(mfaSince)
	u.MFASecret = stringPtr(mfaSecret)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	return u, r.q.mapErr(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email))
	u, err := scanUser(row)
	return u, r.q.mapErr(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, profile_picture, is_email_verified,
			last_login, mfa_enabled_at, mfa_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, domain.NormalizeEmail(u.Email), u.PasswordHash, u.ProfilePicture, u.IsEmailVerified,
		nullTime(u.LastLogin), nullTime(u.MFAEnabledAt), nullString(u.MFASecret),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return err
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET is_email_verified = ?, updated_at = ? WHERE id = ?`,
		true, now(), userID)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), now(), userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, now(), userID)
}

func (r *usersRepo) UpdateProfilePicture(ctx context.Context, userID string, key string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET profile_picture = ?, updated_at = ? WHERE id = ?`,
		key, now(), userID)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID string, secret string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, now(), userID)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return r.q.execOne(ctx,
		`UPDATE users SET mfa_enabled_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), now(), userID)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return r.q.execOne(ctx,
		`UPDATE users SET mfa_enabled_at = NULL, mfa_secret = NULL, updated_at = ? WHERE id = ?`,
		now(), userID)
}
