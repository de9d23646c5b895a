package data

import (
	"path/filepath"

	"github.com/anthropics/wa-autoreply/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Rule     repo.RuleRepo
	ReplyLog repo.ReplyLogRepo
	Outbox   repo.OutboxRepo
}

// NewRepositories creates all repositories under one database directory
func NewRepositories(dataDir string) (*Repositories, error) {
	ruleRepo, err := NewRuleRepo(filepath.Join(dataDir, "rules.db"))
	if err != nil {
		return nil, err
	}

	replyLogRepo, err := NewReplyLogRepo(filepath.Join(dataDir, "replylog.db"))
	if err != nil {
		ruleRepo.Close()
		return nil, err
	}

	outboxRepo, err := NewOutboxRepo(filepath.Join(dataDir, "outbox.db"))
	if err != nil {
		ruleRepo.Close()
		replyLogRepo.Close()
		return nil, err
	}

	return &Repositories{
		Rule:     ruleRepo,
		ReplyLog: replyLogRepo,
		Outbox:   outboxRepo,
	}, nil
}

// Close closes all repositories
func (r *Repositories) Close() {
	if r.Rule != nil {
		r.Rule.Close()
	}
	if r.ReplyLog != nil {
		r.ReplyLog.Close()
	}
	if r.Outbox != nil {
		r.Outbox.Close()
	}
}
