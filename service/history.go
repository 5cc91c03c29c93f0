package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"obsmacros/models"
)

const DefaultHistoryLimit = 50

// HistoryStore keeps finished invocations in SQLite.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (h *HistoryStore) Record(ctx context.Context, inv *models.Invocation) error {
	var finished int64
	if !inv.FinishedAt.IsZero() {
		finished = inv.FinishedAt.UnixMilli()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO invocations (id, binding, action_type, description, source, status, result, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, result = excluded.result, finished_at = excluded.finished_at`,
		inv.ID, inv.Binding, inv.ActionType, inv.Description, inv.Source,
		inv.Status, inv.Result, inv.StartedAt.UnixMilli(), finished)
	if err != nil {
		return fmt.Errorf("failed to record invocation %s: %w", inv.ID, err)
	}
	return nil
}

// Recent returns up to limit invocations, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]*models.Invocation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, binding, action_type, description, source, status, result, started_at, finished_at
		FROM invocations
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var list []*models.Invocation
	for rows.Next() {
		var inv models.Invocation
		var started, finished int64
		if err := rows.Scan(&inv.ID, &inv.Binding, &inv.ActionType, &inv.Description, &inv.Source,
			&inv.Status, &inv.Result, &started, &finished); err != nil {
			return nil, err
		}
		inv.StartedAt = time.UnixMilli(started)
		if finished != 0 {
			inv.FinishedAt = time.UnixMilli(finished)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}
