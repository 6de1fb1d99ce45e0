package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s0hv/manga-tracker-auth/integration/database/pg"
)

// PGStorage implements Storage on PostgreSQL via pgx.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a PostgreSQL-backed session storage.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

// db returns the transaction carried by ctx, or the pool.
func (s *PGStorage) db(ctx context.Context) pg.Querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *PGStorage) Get(ctx context.Context, id string) (Session, error) {
	sess := Session{ID: id}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT user_id, data, expires_at
		FROM sessions
		WHERE session_id = $1`,
		id,
	).Scan(&sess.UserID, &sess.Data, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

func (s *PGStorage) Upsert(ctx context.Context, sess Session) error {
	data := sess.Data
	if data == nil {
		data = map[string]any{}
	}
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO sessions (session_id, user_id, data, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    data = EXCLUDED.data,
		    expires_at = EXCLUDED.expires_at`,
		sess.ID, sess.UserID, data, sess.ExpiresAt,
	)
	return err
}

func (s *PGStorage) Delete(ctx context.Context, id string) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStorage) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE sessions SET expires_at = $2 WHERE session_id = $1`,
		id, expiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStorage) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PGStorage) DeleteExpired(ctx context.Context, now time.Time) ([]map[string]any, error) {
	rows, err := s.db(ctx).Query(ctx, `
		DELETE FROM sessions WHERE expires_at <= $1 RETURNING data`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads []map[string]any
	for rows.Next() {
		var data map[string]any
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		payloads = append(payloads, data)
	}
	return payloads, rows.Err()
}
