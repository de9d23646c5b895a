package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
	"github.com/anthropics/wa-autoreply/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// maxLoggedLen caps the stored body and reply content
const maxLoggedLen = 500

// replyLogRepo implements the reply audit log repository
type replyLogRepo struct {
	db *sql.DB
}

// NewReplyLogRepo creates a new reply audit log repository
func NewReplyLogRepo(dbPath string) (repo.ReplyLogRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reply_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			body TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			reply_type TEXT NOT NULL,
			reply_content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reply_log table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reply_log_created ON reply_log(created_at)`)

	return &replyLogRepo{db: db}, nil
}

// LogReply appends an audit entry
func (r *replyLogRepo) LogReply(ctx context.Context, record *domain.ReplyRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reply_log (message_id, sender, body, rule_id, rule_name, reply_type, reply_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.MessageID,
		record.Sender,
		truncate(record.Body, maxLoggedLen),
		record.RuleID,
		record.RuleName,
		string(record.ReplyType),
		truncate(record.ReplyContent, maxLoggedLen),
		createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to log reply: %w", err)
	}
	return nil
}

// Recent returns the most recent audit entries, newest first
func (r *replyLogRepo) Recent(ctx context.Context, limit int) ([]*domain.ReplyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message_id, sender, body, rule_id, rule_name, reply_type, reply_content, created_at
		FROM reply_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reply log: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReplyRecord
	for rows.Next() {
		var record domain.ReplyRecord
		var replyType string
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.MessageID, &record.Sender, &record.Body,
			&record.RuleID, &record.RuleName, &replyType, &record.ReplyContent, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply log entry: %w", err)
		}
		record.ReplyType = domain.ReplyType(replyType)
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &record)
	}
	return records, nil
}

// CleanupOld deletes audit entries created before the given time
func (r *replyLogRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM reply_log WHERE created_at < ?
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup reply log: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (r *replyLogRepo) Close() error {
	return r.db.Close()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
