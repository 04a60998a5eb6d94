package token

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore persists tokens in the download_tokens table, sharing the
// process-wide DB handle with the result store. The result_id foreign
// key enforces referential integrity at issuance.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Insert(ctx context.Context, t Token) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO download_tokens (token,result_id,storage_key,expires_at,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		t.Token, t.ResultID, t.StorageKey, t.ExpiresAt.Unix(), t.CreatedAt.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, token string) (Token, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token,result_id,storage_key,expires_at,created_at
		FROM download_tokens WHERE token=$1`, token)
	var t Token
	var exp, created int64
	if err := row.Scan(&t.Token, &t.ResultID, &t.StorageKey, &exp, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, false, nil
		}
		return Token{}, false, err
	}
	t.ExpiresAt = time.Unix(exp, 0).UTC()
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, true, nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM download_tokens WHERE expires_at < $1`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
