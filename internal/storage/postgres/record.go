package postgres

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"wallabag_importer/internal/domain"
)

type RecordStore struct {
	db *sqlx.DB
}

func NewRecordStore(db *sqlx.DB) *RecordStore {
	return &RecordStore{db: db}
}

// ExistsBySourceURI reports whether a record of recordType, in any status,
// carries the given source_uri.
func (s *RecordStore) ExistsBySourceURI(ctx context.Context, recordType, uri string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM records r
			INNER JOIN record_meta m ON m.record_id = r.id
			WHERE r.type = $1 AND m.meta_key = $2 AND m.meta_value = $3
		)`

	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists, query, recordType, domain.MetaSourceURI, uri)
	return exists, err
}

// Create inserts the record and its metadata. Run it inside
// TransactionManager.WithTransaction to keep both inserts atomic.
func (s *RecordStore) Create(ctx context.Context, record *domain.Record) (int64, error) {
	exec := GetExecutor(ctx, s.db)

	var id int64
	err := exec.QueryRowxContext(ctx, `
		INSERT INTO records (type, status, format, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		record.Type,
		record.Status,
		record.Format,
		record.Title,
		record.Body,
		record.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(record.Meta))
	for k := range record.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, err := exec.ExecContext(ctx,
			"INSERT INTO record_meta (record_id, meta_key, meta_value) VALUES ($1, $2, $3)",
			id, k, record.Meta[k],
		)
		if err != nil {
			return 0, err
		}
	}

	return id, nil
}

// GetMeta returns the metadata of a record.
func (s *RecordStore) GetMeta(ctx context.Context, recordID int64) (map[string]string, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		"SELECT meta_key, meta_value FROM record_meta WHERE record_id = $1", recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
