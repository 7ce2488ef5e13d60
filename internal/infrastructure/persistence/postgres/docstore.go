package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names for the platform's document types.
const (
	CollectionUsers   = "users"
	CollectionCohorts = "cohorts"
	CollectionCourses = "courses"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT STORE
// ══════════════════════════════════════════════════════════════════════════════

// DocStore provides raw get/query/listAll access to JSONB document
// collections. Typed repositories sit on top of it.
type DocStore struct {
	conn *Connection
}

// NewDocStore creates a DocStore.
func NewDocStore(conn *Connection) *DocStore {
	return &DocStore{conn: conn}
}

// Get returns the raw document data or ErrNoRows.
func (s *DocStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ListAll returns every document in a collection as raw data, keyed order
// unspecified. Point-in-time snapshot; no consistency guarantee against
// concurrent writes.
func (s *DocStore) ListAll(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT data FROM documents WHERE collection = $1`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		out = append(out, data)
	}
	return out, rows.Err()
}

// Put upserts a document. Used by the host application's write paths and by
// tests; the trigger handlers themselves only read.
func (s *DocStore) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", collection, err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// decode unmarshals raw document data into v.
func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// IsNoRows reports whether err is the no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}
