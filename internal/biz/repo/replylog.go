package repo

import (
	"context"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

// ReplyLogRepo records accepted matches for auditing
type ReplyLogRepo interface {
	// LogReply appends an audit entry
	LogReply(ctx context.Context, record *domain.ReplyRecord) error

	// Recent returns the most recent audit entries, newest first
	Recent(ctx context.Context, limit int) ([]*domain.ReplyRecord, error)

	// CleanupOld deletes entries created before the given time
	CleanupOld(ctx context.Context, before time.Time) (int64, error)

	// Close closes the repository
	Close() error
}
