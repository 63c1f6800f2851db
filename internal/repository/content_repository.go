package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chatwave/internal/domain/content"
	chatwave_errors "chatwave/pkg/errors"

	"github.com/google/uuid"
)

type binaryContentRepository struct {
	db DBTX
}

func NewBinaryContentRepository(db DBTX) BinaryContentRepository {
	return &binaryContentRepository{db: db}
}

func (r *binaryContentRepository) Create(ctx context.Context, c *content.BinaryContent) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO binary_contents (id, created_at, file_name, content_type, size, upload_status)
        VALUES ($1,$2,$3,$4,$5,$6)
    `,
		c.ID,
		c.CreatedAt,
		c.FileName,
		c.ContentType,
		c.Size,
		c.UploadStatus,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return chatwave_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *binaryContentRepository) GetByID(ctx context.Context, id uuid.UUID) (content.BinaryContent, error) {
	var c content.BinaryContent
	err := r.db.QueryRowContext(ctx, `
        SELECT id, created_at, file_name, content_type, size, upload_status
        FROM binary_contents
        WHERE id = $1
    `, id).Scan(&c.ID, &c.CreatedAt, &c.FileName, &c.ContentType, &c.Size, &c.UploadStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.BinaryContent{}, chatwave_errors.ErrNotFound
		}
		return content.BinaryContent{}, err
	}
	return c, nil
}

func (r *binaryContentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status content.UploadStatus) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE binary_contents
        SET upload_status = $1, updated_at = $2
        WHERE id = $3
    `, status, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chatwave_errors.ErrNotFound
	}
	return nil
}
