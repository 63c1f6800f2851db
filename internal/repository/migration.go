package repository

import (
	"context"
	"fmt"
)

// InitSchema creates the tables owned by this service. Chat entities beyond
// what fan-out and the drivers need live with their own services.
func InitSchema(ctx context.Context, db DBTX) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            receiver_id UUID NOT NULL,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            type TEXT NOT NULL,
            target_id UUID
        )`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_receiver
            ON notifications (receiver_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS async_task_failures (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            task_name TEXT NOT NULL,
            request_id TEXT NOT NULL,
            failure_reason TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS binary_contents (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ,
            file_name TEXT NOT NULL,
            content_type TEXT NOT NULL,
            size BIGINT NOT NULL,
            upload_status TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            username TEXT NOT NULL,
            email TEXT NOT NULL,
            role TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS channels (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            name TEXT NOT NULL,
            type TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            channel_id UUID NOT NULL,
            author_id UUID NOT NULL,
            content TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS read_statuses (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL,
            channel_id UUID NOT NULL,
            last_read_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
            UNIQUE (user_id, channel_id)
        )`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
