package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/nedaZarei/ImageUploadLoadTest/pkg/models"
)

const (
	CREATE_UPLOAD_TABLE = `CREATE TABLE IF NOT EXISTS uploads(
		id SERIAL PRIMARY KEY,
		file_name VARCHAR(255) NOT NULL,
		stored_as VARCHAR(255) NOT NULL,
		size_bytes BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
)

type UploadDatabase interface {
	CreateUpload(ctx context.Context, rec models.UploadRecord) (int, error)
	GetUploadByID(ctx context.Context, id int) (*models.UploadRecord, error)
	RecentUploads(ctx context.Context, limit int) ([]models.UploadRecord, error)
}

type UploadDatabaseImpl struct {
	db *sqlx.DB
}

func NewUploadDatabase(autoCreate bool, db *sqlx.DB) (*UploadDatabaseImpl, error) {
	if autoCreate {
		if _, err := db.Exec(CREATE_UPLOAD_TABLE); err != nil {
			return nil, err
		}
	}
	return &UploadDatabaseImpl{db: db}, nil
}

func (r *UploadDatabaseImpl) CreateUpload(ctx context.Context, rec models.UploadRecord) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO uploads(file_name, stored_as, size_bytes, status) VALUES($1, $2, $3, $4) RETURNING id",
		rec.FileName, rec.StoredAs, rec.SizeBytes, rec.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UploadDatabaseImpl) GetUploadByID(ctx context.Context, id int) (*models.UploadRecord, error) {
	rec := &models.UploadRecord{}
	err := r.db.GetContext(ctx, rec, "SELECT * FROM uploads WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *UploadDatabaseImpl) RecentUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	recs := []models.UploadRecord{}
	err := r.db.SelectContext(ctx, &recs, "SELECT * FROM uploads ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}
