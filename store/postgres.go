package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PostgresStore keeps every collection in a single documents table with a
// JSONB body. Filters compile to JSONB containment (data @> filter) and
// patches to a JSONB merge (data || patch), so each call is one statement
// and per-document atomicity comes from Postgres itself.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	filterJSON, err := json.Marshal(normalizeFilter(filter))
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, collection, filterJSON)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, collection, id string) (*Document, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var doc Document
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *PostgresStore) Save(ctx context.Context, collection string, doc Document) error {
	query := `
		INSERT INTO documents (id, collection, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, doc.ID, collection, []byte(doc.Data))
	return err
}

func (s *PostgresStore) DeleteByID(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	filterJSON, err := json.Marshal(normalizeFilter(filter))
	if err != nil {
		return 0, err
	}

	var count int64
	query := `SELECT COUNT(*) FROM documents WHERE collection = $1 AND data @> $2::jsonb`
	if err := s.db.QueryRowContext(ctx, query, collection, filterJSON).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PostgresStore) UpdateMany(ctx context.Context, collection string, filter Filter, patch map[string]interface{}) (int64, error) {
	filterJSON, err := json.Marshal(normalizeFilter(filter))
	if err != nil {
		return 0, err
	}
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND data @> $2::jsonb
	`
	result, err := s.db.ExecContext(ctx, query, collection, filterJSON, patchJSON)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// normalizeFilter guards against nil maps so containment matches
// everything instead of erroring.
func normalizeFilter(filter Filter) Filter {
	if filter == nil {
		return Filter{}
	}
	return filter
}

var _ DocumentStore = (*PostgresStore)(nil)
