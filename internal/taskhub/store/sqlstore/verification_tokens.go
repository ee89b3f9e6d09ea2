package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type verificationTokensRepo struct {
	q querier
}

const verificationTokenColumns = `id, user_id, purpose, token_hash, expires_at, created_at`

func scanVerificationToken(s scanner) (domain.VerificationToken, error) {
	var t domain.VerificationToken
	if err := s.Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return domain.VerificationToken{}, err
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *verificationTokensRepo) CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO verification_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Purpose), t.TokenHash, t.ExpiresAt.UTC(), t.CreatedAt.UTC(),
	)
	return err
}

func (r *verificationTokensRepo) GetVerificationToken(
	ctx context.Context,
	userID string,
	purpose domain.TokenPurpose,
	tokenHash string,
) (domain.VerificationToken, error) {
	row := r.q.queryRow(ctx, `
		SELECT `+verificationTokenColumns+` FROM verification_tokens
		WHERE user_id = ? AND purpose = ? AND token_hash = ?`,
		userID, string(purpose), tokenHash)
	t, err := scanVerificationToken(row)
	return t, r.q.mapErr(err)
}

func (r *verificationTokensRepo) ListVerificationTokens(
	ctx context.Context,
	userID string,
	purpose domain.TokenPurpose,
) ([]domain.VerificationToken, error) {
	rows, err := r.q.query(ctx, `
		SELECT `+verificationTokenColumns+` FROM verification_tokens
		WHERE user_id = ? AND purpose = ?
		ORDER BY created_at DESC, id DESC`,
		userID, string(purpose))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanVerificationToken)
}

func (r *verificationTokensRepo) DeleteVerificationToken(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM verification_tokens WHERE id = ?`, id)
}

func (r *verificationTokensRepo) DeleteExpiredUserTokens(
	ctx context.Context,
	userID string,
	purpose domain.TokenPurpose,
	now time.Time,
) error {
	_, err := r.q.exec(ctx, `
		DELETE FROM verification_tokens
		WHERE user_id = ? AND purpose = ? AND expires_at <= ?`,
		userID, string(purpose), now.UTC())
	return err
}

func (r *verificationTokensRepo) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM verification_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
