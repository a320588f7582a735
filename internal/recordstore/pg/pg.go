// Package pg is a Postgres-backed implementation of recordstore.Store,
// built on pgx and squirrel.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Store is a recordstore.Store backed by a Postgres connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a pool against url and verifies connectivity before returning.
func New(ctx context.Context, url string, options ...Option) (*Store, error) {
	cfg := newPostgresConfig(options)

	pgxConfig, err := cfg.PgxConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

func scanRecord(row pgx.Row) (entity.ArchiveRecord, error) {
	var (
		r         entity.ArchiveRecord
		sigJSON   []byte
		virtual   *string
		createdAt time.Time
		updatedAt time.Time
		lastSeen  time.Time
	)

	if err := row.Scan(&r.TargetPath, &r.SourcePath, &r.Type, &sigJSON, &virtual, &createdAt, &updatedAt, &lastSeen); err != nil {
		return entity.ArchiveRecord{}, err
	}

	if err := json.Unmarshal(sigJSON, &r.Signature); err != nil {
		return entity.ArchiveRecord{}, fmt.Errorf("decode signature for %s: %w", r.TargetPath, err)
	}
	if virtual != nil {
		r.VirtualTargetPath = *virtual
	}
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt
	r.LastSeenAt = lastSeen

	return r, nil
}

// Get implements recordstore.Store.
func (s *Store) Get(ctx context.Context, targetPath string) (entity.ArchiveRecord, bool, error) {
	sql, args, err := selectRecordStmt.Where(sq.Eq{colTargetPath: targetPath}).ToSql()
	if err != nil {
		return entity.ArchiveRecord{}, false, err
	}

	row := s.pool.QueryRow(ctx, sql, args...)
	record, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return entity.ArchiveRecord{}, false, nil
		}
		return entity.ArchiveRecord{}, false, err
	}
	return record, true, nil
}

// Upsert implements recordstore.Store.
func (s *Store) Upsert(ctx context.Context, targetPath, sourcePath string, recordType entity.RecordType, sig entity.Signature, virtualTargetPath string, now time.Time) error {
	sigJSON, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("encode signature: %w", err)
	}

	onConflict := fmt.Sprintf(
		`ON CONFLICT (%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = excluded.%s`,
		colTargetPath,
		colSourcePath, colSourcePath,
		colType, colType,
		colSignature, colSignature,
		colVirtualTargetPath, colVirtualTargetPath,
		colUpdatedAt, colUpdatedAt,
		colLastSeenAt, colLastSeenAt,
	)
	sql, args, err := psql.Insert(recordsTable).
		Columns(colTargetPath, colSourcePath, colType, colSignature, colVirtualTargetPath, colCreatedAt, colUpdatedAt, colLastSeenAt).
		Values(targetPath, sourcePath, string(recordType), sigJSON, virtualTargetPath, now, now, now).
		Suffix(onConflict).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, sql, args...)
	return err
}

// Touch implements recordstore.Store.
func (s *Store) Touch(ctx context.Context, targetPath string, now time.Time) error {
	sql, args, err := psql.Update(recordsTable).
		Set(colLastSeenAt, now).
		Where(sq.Eq{colTargetPath: targetPath}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, sql, args...)
	return err
}

// ListAll implements recordstore.Store.
func (s *Store) ListAll(ctx context.Context) ([]entity.ArchiveRecord, error) {
	return s.query(ctx, selectRecordStmt)
}

// ListByType implements recordstore.Store.
func (s *Store) ListByType(ctx context.Context, types ...entity.RecordType) ([]entity.ArchiveRecord, error) {
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	return s.query(ctx, selectRecordStmt.Where(sq.Eq{colType: values}))
}

func (s *Store) query(ctx context.Context, query sq.SelectBuilder) ([]entity.ArchiveRecord, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ArchiveRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
