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

// ruleRepo implements the rule repository
type ruleRepo struct {
	db *sql.DB
}

// NewRuleRepo creates a new rule repository
func NewRuleRepo(dbPath string) (repo.RuleRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reply_rules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			trigger_type TEXT NOT NULL,
			trigger_value TEXT NOT NULL,
			reply_type TEXT NOT NULL,
			reply_content TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			priority INTEGER NOT NULL DEFAULT 0,
			cooldown INTEGER NOT NULL DEFAULT 0,
			match_count INTEGER NOT NULL DEFAULT 0,
			last_used INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reply_rules_priority ON reply_rules(priority)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &ruleRepo{db: db}, nil
}

// Save inserts or replaces a rule
func (r *ruleRepo) Save(ctx context.Context, rule *domain.ReplyRule) error {
	var lastUsed int64
	if !rule.LastUsed.IsZero() {
		lastUsed = rule.LastUsed.Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reply_rules
			(id, name, trigger_type, trigger_value, reply_type, reply_content, is_active, priority, cooldown, match_count, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID,
		rule.Name,
		string(rule.TriggerType),
		rule.TriggerValue,
		string(rule.ReplyType),
		rule.ReplyContent,
		boolToInt(rule.IsActive),
		rule.Priority,
		rule.Cooldown,
		rule.MatchCount,
		lastUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// Delete deletes a rule
func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reply_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

// LoadAll loads all persisted rules
func (r *ruleRepo) LoadAll(ctx context.Context) ([]*domain.ReplyRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, trigger_type, trigger_value, reply_type, reply_content, is_active, priority, cooldown, match_count, last_used
		FROM reply_rules
		ORDER BY priority DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.ReplyRule
	for rows.Next() {
		var rule domain.ReplyRule
		var triggerType, replyType string
		var isActive int
		var lastUsed int64
		if err := rows.Scan(&rule.ID, &rule.Name, &triggerType, &rule.TriggerValue, &replyType, &rule.ReplyContent,
			&isActive, &rule.Priority, &rule.Cooldown, &rule.MatchCount, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.TriggerType = domain.TriggerType(triggerType)
		rule.ReplyType = domain.ReplyType(replyType)
		rule.IsActive = isActive != 0
		if lastUsed > 0 {
			rule.LastUsed = time.Unix(lastUsed, 0)
		}
		rules = append(rules, &rule)
	}
	return rules, nil
}

// Close closes the database connection
func (r *ruleRepo) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
