package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/domain"
)

type mfaSessionsRepo struct {
	q querier
}

const mfaSessionColumns = `id, user_id, attempts, expires_at, created_at`

func scanMFASession(s scanner) (domain.MFASession, error) {
	var m domain.MFASession
	if err := s.Scan(&m.ID, &m.UserID, &m.Attempts, &m.ExpiresAt, &m.CreatedAt); err != nil {
		return domain.MFASession{}, err
	}
	m.ExpiresAt = m.ExpiresAt.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *mfaSessionsRepo) CreateMFASession(ctx context.Context, m domain.MFASession) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO mfa_sessions (id, user_id, attempts, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Attempts, m.ExpiresAt.UTC(), m.CreatedAt.UTC(),
	)
	return err
}

func (r *mfaSessionsRepo) GetMFASession(ctx context.Context, id string) (domain.MFASession, error) {
	row := r.q.queryRow(ctx, `SELECT `+mfaSessionColumns+` FROM mfa_sessions WHERE id = ?`, id)
	m, err := scanMFASession(row)
	return m, r.q.mapErr(err)
}

func (r *mfaSessionsRepo) IncrementMFASessionAttempts(ctx context.Context, id string) (int, error) {
	if err := r.q.execOne(ctx, `UPDATE mfa_sessions SET attempts = attempts + 1 WHERE id = ?`, id); err != nil {
		return 0, err
	}
	var n int
	err := r.q.queryRow(ctx, `SELECT attempts FROM mfa_sessions WHERE id = ?`, id).Scan(&n)
	return n, r.q.mapErr(err)
}

func (r *mfaSessionsRepo) DeleteMFASession(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM mfa_sessions WHERE id = ?`, id)
}

func (r *mfaSessionsRepo) DeleteExpiredMFASessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM mfa_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
