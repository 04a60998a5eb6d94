package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements Store over database/sql. The same statements run
// on sqlite (modernc) and postgres (pgx stdlib); both accept $n
// placeholders.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SaveResult(ctx context.Context, rec Record) error {
	pj, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (id,email,name,core_type,subtype,profile_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET email=EXCLUDED.email, name=EXCLUDED.name,
			core_type=EXCLUDED.core_type, subtype=EXCLUDED.subtype, profile_json=EXCLUDED.profile_json`,
		rec.ID, rec.Email, rec.Name, rec.CoreType, rec.Subtype, string(pj), created.Unix())
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,email,name,core_type,subtype,profile_json,pdf_url,storage_key,created_at
		FROM results WHERE id=$1`, id)
	return scanRecord(row)
}

func (s *SQLStore) GetResultByEmail(ctx context.Context, email string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,email,name,core_type,subtype,profile_json,pdf_url,storage_key,created_at
		FROM results WHERE email=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, email)
	return scanRecord(row)
}

func (s *SQLStore) AttachArtifact(ctx context.Context, id, pdfURL, storageKey string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE results SET pdf_url=$1, storage_key=$2 WHERE id=$3`,
		pdfURL, storageKey, id)
	if err != nil {
		return fmt.Errorf("attach artifact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var rec Record
	var pj string
	var created int64
	err := row.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.CoreType, &rec.Subtype, &pj,
		&rec.PDFURL, &rec.StorageKey, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(pj), &rec.Profile); err != nil {
		return Record{}, fmt.Errorf("decode profile: %w", err)
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, nil
}
