// catalog.go - File metadata records.
//
// The catalog owns the pointer and descriptive metadata only; the object
// store owns the bytes. Nothing points back from storage to catalog, so
// orphaned objects are possible and accepted.
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

// ErrFileNotFound means the referenced file id has no catalog record.
var ErrFileNotFound = errors.New("file not found")

// FileRecord describes one uploaded object. StorageKey is the opaque
// locator in the object store and is never exposed over the API.
type FileRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"size"`
	StorageKey string    `json:"-"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Catalog is CRUD over file metadata. List returns newest upload first.
type Catalog interface {
	List(ctx context.Context) ([]FileRecord, error)
	Create(ctx context.Context, rec FileRecord) (FileRecord, error)
	Get(ctx context.Context, id string) (FileRecord, error)
	Delete(ctx context.Context, id string) error
}

// newFileID mints a 24-hex-character id (12 random bytes).
func newFileID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		// Fallback: time-based (rare)
		return hex.EncodeToString([]byte(time.Now().Format("060102150405")))
	}
	return hex.EncodeToString(b)
}

type postgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog returns the Postgres-backed catalog.
func NewPostgresCatalog(db *sql.DB) Catalog {
	return &postgresCatalog{db: db}
}

func (c *postgresCatalog) List(ctx context.Context) ([]FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, filename, mime_type, size_bytes, storage_key, uploaded_at
		FROM files
		ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []FileRecord{}
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.MimeType, &rec.SizeBytes, &rec.StorageKey, &rec.UploadedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (c *postgresCatalog) Create(ctx context.Context, rec FileRecord) (FileRecord, error) {
	rec.ID = newFileID()
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO files (id, filename, mime_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING uploaded_at
	`, rec.ID, rec.Filename, rec.MimeType, rec.SizeBytes, rec.StorageKey).Scan(&rec.UploadedAt)
	if err != nil {
		return FileRecord{}, err
	}
	return rec, nil
}

func (c *postgresCatalog) Get(ctx context.Context, id string) (FileRecord, error) {
	var rec FileRecord
	err := c.db.QueryRowContext(ctx, `
		SELECT id, filename, mime_type, size_bytes, storage_key, uploaded_at
		FROM files
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Filename, &rec.MimeType, &rec.SizeBytes, &rec.StorageKey, &rec.UploadedAt)
	if err == sql.ErrNoRows {
		return FileRecord{}, ErrFileNotFound
	}
	if err != nil {
		return FileRecord{}, err
	}
	return rec, nil
}

func (c *postgresCatalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFileNotFound
	}
	return nil
}
