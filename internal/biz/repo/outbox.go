package repo

import (
	"context"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

// OutboxRepo queues generated replies for the delivery transport. The
// engine never verifies delivery; the transport drains the queue on its
// own schedule.
type OutboxRepo interface {
	// Enqueue queues a reply for the recipient
	Enqueue(ctx context.Context, recipient string, reply *domain.Reply) error

	// GetPending returns unsent entries, oldest first
	GetPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)

	// MarkSent marks entries as delivered
	MarkSent(ctx context.Context, ids []int64) error

	// Close closes the repository
	Close() error
}
