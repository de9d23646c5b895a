package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
	"github.com/anthropics/wa-autoreply/internal/biz/repo"
	"github.com/anthropics/wa-autoreply/internal/biz/usecase"
)

// Responder drives the match -> generate -> dispatch -> audit flow for each
// inbound message and runs the periodic cooldown sweep.
type Responder struct {
	replyUC *usecase.ReplyUsecase
	outbox  repo.OutboxRepo   // optional
	logRepo repo.ReplyLogRepo // optional

	sweepInterval time.Duration
	running       bool
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewResponder creates a new responder
func NewResponder(replyUC *usecase.ReplyUsecase, outbox repo.OutboxRepo, logRepo repo.ReplyLogRepo, sweepInterval time.Duration) *Responder {
	return &Responder{
		replyUC:       replyUC,
		outbox:        outbox,
		logRepo:       logRepo,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
}

// HandleIncoming evaluates one inbound message. When a rule matches, the
// generated reply is queued on the outbox and recorded in the audit log,
// both best effort. Returns nil when no rule matched.
func (r *Responder) HandleIncoming(ctx context.Context, msg *domain.Message) *domain.Reply {
	matched, rule := r.replyUC.ShouldReply(ctx, msg)
	if !matched {
		return nil
	}

	reply := r.replyUC.GenerateReply(msg, rule)

	if r.outbox != nil {
		if err := r.outbox.Enqueue(ctx, msg.Sender, reply); err != nil {
			fmt.Printf("[Responder] Failed to enqueue reply for %s: %v\n", msg.Sender, err)
		}
	}

	if r.logRepo != nil {
		record := &domain.ReplyRecord{
			MessageID:    msg.ID,
			Sender:       msg.Sender,
			Body:         msg.Body,
			RuleID:       rule.ID,
			RuleName:     rule.Name,
			ReplyType:    reply.Type,
			ReplyContent: reply.Content,
			CreatedAt:    time.Now(),
		}
		if err := r.logRepo.LogReply(ctx, record); err != nil {
			fmt.Printf("[Responder] Failed to log reply for %s: %v\n", msg.Sender, err)
		}
	}

	fmt.Printf("[Responder] Replied to %s with rule %s\n", msg.Sender, rule.Name)
	return reply
}

// Start starts the cooldown sweep loop
func (r *Responder) Start() {
	if r.running || r.sweepInterval <= 0 {
		return
	}
	r.running = true
	r.wg.Add(1)
	go r.sweepLoop()
	fmt.Printf("[Responder] Started cooldown sweep every %v\n", r.sweepInterval)
}

// Stop stops the sweep loop
func (r *Responder) Stop() {
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
	r.wg.Wait()
	fmt.Println("[Responder] Stopped")
}

func (r *Responder) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := r.replyUC.SweepCooldowns(); removed > 0 {
				fmt.Printf("[Responder] Swept %d stale cooldown entries\n", removed)
			}
		case <-r.stopCh:
			return
		}
	}
}
