package authtoken

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s0hv/manga-tracker-auth/core/user"
	"github.com/s0hv/manga-tracker-auth/integration/database/pg"
)

// PGStore implements Store on PostgreSQL via pgx.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed token store.
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

func (s *PGStore) Insert(ctx context.Context, token Token) error {
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO auth_tokens (user_id, lookup, hashed_token, expires_at)
		VALUES ($1, $2, $3, $4)`,
		token.UserID, token.Lookup, token.HashedToken, token.ExpiresAt,
	)
	return err
}

func (s *PGStore) GetWithUser(ctx context.Context, userUUID uuid.UUID, lookup string) (Token, user.Record, error) {
	var (
		token Token
		rec   user.Record
	)
	err := s.db(ctx).QueryRow(ctx, `
		SELECT at.user_id, at.lookup, at.hashed_token, at.expires_at,
		       u.user_id, u.user_uuid, u.username, u.email, u.theme, u.admin
		FROM auth_tokens at
		INNER JOIN users u ON u.user_id = at.user_id
		WHERE u.user_uuid = $1 AND at.lookup = $2`,
		userUUID, lookup,
	).Scan(
		&token.UserID, &token.Lookup, &token.HashedToken, &token.ExpiresAt,
		&rec.ID, &rec.UUID, &rec.Username, &rec.Email, &rec.Theme, &rec.Admin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, user.Record{}, ErrTokenNotFound
		}
		return Token{}, user.Record{}, err
	}

	return token, rec, nil
}

func (s *PGStore) UpdateHash(ctx context.Context, userID int64, lookup string, hashedToken []byte, expiresAt time.Time) (bool, error) {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE auth_tokens
		SET hashed_token = $3, expires_at = $4
		WHERE user_id = $1 AND lookup = $2`,
		userID, lookup, hashedToken, expiresAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGStore) DeleteOne(ctx context.Context, userID int64, lookup string, hashedToken []byte) (bool, error) {
	tag, err := s.db(ctx).Exec(ctx, `
		DELETE FROM auth_tokens
		WHERE user_id = $1 AND lookup = $2 AND hashed_token = $3`,
		userID, lookup, hashedToken,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
