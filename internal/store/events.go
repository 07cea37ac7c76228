package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

const eventColumns = `conversation_id, timestamp_ms, message_id, student_id, module_id,
		question, response, model_used, provider, token_count, response_time_ms, has_file, file_name`

// InsertEvents upserts events in one transaction and returns how many rows were written.
// A repeated identity (conversation, timestamp, message) replaces the stored row.
func (s *DB) InsertEvents(ctx context.Context, events []model.ChatMessageEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id, timestamp_ms, message_id) DO UPDATE SET
		student_id = excluded.student_id, module_id = excluded.module_id,
		question = excluded.question, response = excluded.response,
		model_used = excluded.model_used, provider = excluded.provider,
		token_count = excluded.token_count, response_time_ms = excluded.response_time_ms,
		has_file = excluded.has_file, file_name = excluded.file_name`))
	if err != nil {
		return 0, fmt.Errorf("preparing event insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	n := 0
	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ConversationID, e.Timestamp, e.MessageID, e.StudentID, e.ModuleID,
			e.Question, e.Response, e.ModelUsed, e.Provider,
			nullInt(e.TokenCount), nullInt(e.ResponseTimeMs), e.HasFile, e.FileName,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting event %s@%d: %w", e.ConversationID, e.Timestamp, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// QueryEvents returns events newest first. A zero ModuleID scans every module,
// which the module index cannot serve; callers should scope by module when they can.
func (s *DB) QueryEvents(ctx context.Context, q model.EventQuery) ([]model.ChatMessageEvent, error) {
	var (
		where []string
		args  []any
	)
	if q.ModuleID != 0 {
		where = append(where, "module_id = ?")
		args = append(args, q.ModuleID)
	}
	if q.Start != nil {
		where = append(where, "timestamp_ms >= ?")
		args = append(args, q.Start.UnixMilli())
	}
	if q.End != nil {
		where = append(where, "timestamp_ms < ?")
		args = append(args, q.End.UnixMilli())
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp_ms DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.ChatMessageEvent
	for rows.Next() {
		var (
			e              model.ChatMessageEvent
			tokens, respMs sql.NullInt64
		)
		err := rows.Scan(
			&e.ConversationID, &e.Timestamp, &e.MessageID, &e.StudentID, &e.ModuleID,
			&e.Question, &e.Response, &e.ModelUsed, &e.Provider,
			&tokens, &respMs, &e.HasFile, &e.FileName,
		)
		if err != nil {
			return nil, err
		}
		e.TokenCount = fromNull(tokens)
		e.ResponseTimeMs = fromNull(respMs)
		events = append(events, e)
	}
	return events, rows.Err()
}

// LatestEventTime returns the newest event timestamp, or the zero time when empty.
func (s *DB) LatestEventTime(ctx context.Context) (time.Time, error) {
	var ms sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(timestamp_ms) FROM events").Scan(&ms); err != nil {
		return time.Time{}, err
	}
	if !ms.Valid {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms.Int64), nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
