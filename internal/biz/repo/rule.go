package repo

import (
	"context"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

// RuleRepo persists reply rules. The in-memory store stays authoritative;
// write-through failures are logged by the caller and never abort the
// operation.
type RuleRepo interface {
	// Save inserts or replaces a rule
	Save(ctx context.Context, rule *domain.ReplyRule) error

	// Delete removes a rule by id
	Delete(ctx context.Context, id string) error

	// LoadAll loads every persisted rule
	LoadAll(ctx context.Context) ([]*domain.ReplyRule, error)

	// Close closes the repository
	Close() error
}
