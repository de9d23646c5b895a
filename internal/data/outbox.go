package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
	"github.com/anthropics/wa-autoreply/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// outboxRepo implements the outbound reply queue
type outboxRepo struct {
	db *sql.DB
}

// NewOutboxRepo creates a new outbox repository
func NewOutboxRepo(dbPath string) (repo.OutboxRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS outbox (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			sent INTEGER DEFAULT 0,
			sent_at INTEGER
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create outbox table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_outbox_sent_created ON outbox(sent, created_at)`)

	return &outboxRepo{db: db}, nil
}

// Enqueue queues a reply for the recipient
func (r *outboxRepo) Enqueue(ctx context.Context, recipient string, reply *domain.Reply) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to encode reply payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO outbox (recipient, payload, created_at)
		VALUES (?, ?, ?)
	`, recipient, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to enqueue reply: %w", err)
	}
	return nil
}

// GetPending returns unsent entries, oldest first
func (r *outboxRepo) GetPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, payload, created_at
		FROM outbox
		WHERE sent = 0
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []*domain.OutboxEntry
	for rows.Next() {
		var entry domain.OutboxEntry
		var payload string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Recipient, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		var reply domain.Reply
		if err := json.Unmarshal([]byte(payload), &reply); err != nil {
			return nil, fmt.Errorf("failed to decode outbox payload: %w", err)
		}
		entry.Payload = &reply
		entry.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, &entry)
	}
	return entries, nil
}

// MarkSent marks entries as delivered
func (r *outboxRepo) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	// Build IN clause
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids)+1)
	args[0] = time.Now().Unix()
	for i, id := range ids {
		placeholders[i] = "?"
		args[i+1] = id
	}

	query := fmt.Sprintf(`
		UPDATE outbox
		SET sent = 1, sent_at = ?
		WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entries sent: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *outboxRepo) Close() error {
	return r.db.Close()
}
