package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s0hv/manga-tracker-auth/integration/database/pg"
)

// PGStore implements Store on PostgreSQL via pgx.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed user store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// db returns the transaction carried by ctx, or the pool.
func (s *PGStore) db(ctx context.Context) pg.Querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *PGStore) GetByID(ctx context.Context, id int64) (Record, error) {
	var rec Record
	err := s.db(ctx).QueryRow(ctx, `
		SELECT user_id, user_uuid, username, email, theme, admin
		FROM users
		WHERE user_id = $1`,
		id,
	).Scan(&rec.ID, &rec.UUID, &rec.Username, &rec.Email, &rec.Theme, &rec.Admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}
