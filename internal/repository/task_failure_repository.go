package repository

import (
	"context"

	"chatwave/internal/domain/taskfailure"
)

type taskFailureRepository struct {
	db DBTX
}

func NewTaskFailureRepository(db DBTX) TaskFailureRepository {
	return &taskFailureRepository{db: db}
}

func (r *taskFailureRepository) Create(ctx context.Context, f *taskfailure.AsyncTaskFailure) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO async_task_failures (id, created_at, task_name, request_id, failure_reason)
        VALUES ($1,$2,$3,$4,$5)
    `,
		f.ID,
		f.CreatedAt,
		f.TaskName,
		f.RequestID,
		f.FailureReason,
	)
	return err
}

func (r *taskFailureRepository) FindAll(ctx context.Context, limit int) ([]taskfailure.AsyncTaskFailure, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, created_at, task_name, request_id, failure_reason
        FROM async_task_failures
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []taskfailure.AsyncTaskFailure
	for rows.Next() {
		var f taskfailure.AsyncTaskFailure
		if err := rows.Scan(&f.ID, &f.CreatedAt, &f.TaskName, &f.RequestID, &f.FailureReason); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return failures, nil
}
