package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
	"github.com/anthropics/wa-autoreply/internal/biz/repo"

	"github.com/google/uuid"
)

// ErrRuleNotFound is returned for operations on an unknown rule id
var ErrRuleNotFound = errors.New("rule not found")

// ReplyUsecase owns the rule store and the cooldown gate. All access goes
// through its methods; the mutex covers concurrent callers (admin API plus
// responder). The in-memory store is authoritative, persistence is a
// best-effort write-through.
type ReplyUsecase struct {
	mu        sync.Mutex
	rules     map[string]*domain.ReplyRule
	cooldowns *domain.CooldownGate

	ruleRepo repo.RuleRepo // optional
}

// NewReplyUsecase creates a new reply usecase
func NewReplyUsecase(ruleRepo repo.RuleRepo, cooldowns *domain.CooldownGate) *ReplyUsecase {
	if cooldowns == nil {
		cooldowns = domain.NewCooldownGate(0, 0)
	}
	return &ReplyUsecase{
		rules:     make(map[string]*domain.ReplyRule),
		cooldowns: cooldowns,
		ruleRepo:  ruleRepo,
	}
}

// LoadPersisted loads rules from the persistence collaborator into the store
func (uc *ReplyUsecase) LoadPersisted(ctx context.Context) (int, error) {
	if uc.ruleRepo == nil {
		return 0, nil
	}
	rules, err := uc.ruleRepo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load rules: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, rule := range rules {
		uc.rules[rule.ID] = rule
	}
	return len(rules), nil
}

// SeedRules inserts default rules, skipping ids that already exist so seeds
// never clobber persisted state
func (uc *ReplyUsecase) SeedRules(ctx context.Context, rules []*domain.ReplyRule) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	seeded := 0
	for _, rule := range rules {
		if rule.ID == "" {
			continue
		}
		if _, exists := uc.rules[rule.ID]; exists {
			continue
		}
		if err := rule.Validate(); err != nil {
			fmt.Printf("[Engine] Skipping invalid seed rule %s: %v\n", rule.ID, err)
			continue
		}
		uc.rules[rule.ID] = rule
		uc.writeThrough(ctx, rule)
		seeded++
	}
	return seeded
}

// AddRule validates and stores a rule, generating an id if none is given.
// An existing rule with the same id is replaced.
func (uc *ReplyUsecase) AddRule(ctx context.Context, rule *domain.ReplyRule) (string, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := rule.Validate(); err != nil {
		return "", err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	stored := *rule
	uc.rules[stored.ID] = &stored
	uc.writeThrough(ctx, &stored)

	fmt.Printf("[Engine] Added rule: %s (%s)\n", stored.Name, stored.ID)
	return stored.ID, nil
}

// UpdateRule applies a partial update to an existing rule. Fields absent
// from the update are left untouched.
func (uc *ReplyUsecase) UpdateRule(ctx context.Context, id string, update *domain.RuleUpdate) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rule, ok := uc.rules[id]
	if !ok {
		return ErrRuleNotFound
	}

	// Apply onto a copy so a rejected field leaves the store untouched
	updated := *rule
	if err := update.Apply(&updated); err != nil {
		return err
	}

	uc.rules[id] = &updated
	uc.writeThrough(ctx, &updated)

	fmt.Printf("[Engine] Updated rule: %s (%s)\n", updated.Name, id)
	return nil
}

// DeleteRule removes a rule by id
func (uc *ReplyUsecase) DeleteRule(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rule, ok := uc.rules[id]
	if !ok {
		return ErrRuleNotFound
	}
	delete(uc.rules, id)

	if uc.ruleRepo != nil {
		if err := uc.ruleRepo.Delete(ctx, id); err != nil {
			fmt.Printf("[Engine] Failed to delete persisted rule %s: %v\n", id, err)
		}
	}

	fmt.Printf("[Engine] Deleted rule: %s (%s)\n", rule.Name, id)
	return nil
}

// ListRules returns copies of the stored rules sorted by priority descending
// then name ascending
func (uc *ReplyUsecase) ListRules(activeOnly bool) []*domain.ReplyRule {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rules := make([]*domain.ReplyRule, 0, len(uc.rules))
	for _, rule := range uc.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		copied := *rule
		rules = append(rules, &copied)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].Name < rules[j].Name
	})
	return rules
}

// GetRule returns a copy of a rule by id
func (uc *ReplyUsecase) GetRule(id string) (*domain.ReplyRule, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rule, ok := uc.rules[id]
	if !ok {
		return nil, false
	}
	copied := *rule
	return &copied, true
}

// ShouldReply evaluates the message against all active rules and returns the
// selected rule, or (false, nil) when nothing matches. Among matching rules
// the strictly highest priority wins; ties go to the lexicographically
// smallest rule id. A trigger that fails to evaluate is logged and treated
// as no-match for that rule only. On acceptance the rule's counters and the
// sender's cooldown record are updated.
func (uc *ReplyUsecase) ShouldReply(ctx context.Context, msg *domain.Message) (bool, *domain.ReplyRule) {
	if msg == nil || msg.IsEmpty() {
		return false, nil
	}
	body := strings.TrimSpace(msg.Body)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ids := make([]string, 0, len(uc.rules))
	for id := range uc.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var selected *domain.ReplyRule
	for _, id := range ids {
		rule := uc.rules[id]
		if !rule.IsActive {
			continue
		}
		matched, err := rule.Matches(body)
		if err != nil {
			fmt.Printf("[Engine] Trigger evaluation failed for rule %s: %v\n", rule.ID, err)
			continue
		}
		if !matched {
			continue
		}
		if selected == nil || rule.Priority > selected.Priority {
			selected = rule
		}
	}

	if selected == nil {
		return false, nil
	}

	if uc.cooldowns.IsBlocked(msg.Sender, selected) {
		return false, nil
	}

	selected.MatchCount++
	selected.LastUsed = time.Now()
	if selected.Cooldown > 0 {
		uc.cooldowns.Record(msg.Sender)
	}
	uc.writeThrough(ctx, selected)

	copied := *selected
	return true, &copied
}

// GenerateReply builds the outbound payload for a matched rule. It never
// fails the caller: a generation fault is logged and replaced with the fixed
// fallback text payload.
func (uc *ReplyUsecase) GenerateReply(msg *domain.Message, rule *domain.ReplyRule) *domain.Reply {
	reply, err := domain.BuildReply(msg, rule)
	if err != nil {
		fmt.Printf("[Engine] Reply generation failed for rule %s: %v\n", rule.ID, err)
		return domain.FallbackReply()
	}
	return reply
}

// ClearCooldowns empties the cooldown gate and returns the prior entry count
func (uc *ReplyUsecase) ClearCooldowns() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	count := uc.cooldowns.ClearAll()
	fmt.Printf("[Engine] Cleared cooldowns for %d senders\n", count)
	return count
}

// SweepCooldowns drops stale cooldown entries and returns how many were
// removed
func (uc *ReplyUsecase) SweepCooldowns() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.cooldowns.Sweep()
}

// RuleStat summarizes one rule's usage
type RuleStat struct {
	Name       string    `json:"name"`
	MatchCount int64     `json:"match_count"`
	LastUsed   time.Time `json:"last_used"`
}

// Stats summarizes the engine's rule usage
type Stats struct {
	TotalRules    int        `json:"total_rules"`
	ActiveRules   int        `json:"active_rules"`
	TotalMatches  int64      `json:"total_matches"`
	ActiveSenders int        `json:"active_senders"`
	TopRules      []RuleStat `json:"top_rules"`
}

// GetStats returns usage statistics with the five most matched rules
func (uc *ReplyUsecase) GetStats() *Stats {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	stats := &Stats{
		TotalRules:    len(uc.rules),
		ActiveSenders: uc.cooldowns.Size(),
	}

	used := make([]*domain.ReplyRule, 0, len(uc.rules))
	for _, rule := range uc.rules {
		if rule.IsActive {
			stats.ActiveRules++
		}
		stats.TotalMatches += rule.MatchCount
		if rule.MatchCount > 0 {
			used = append(used, rule)
		}
	}

	sort.Slice(used, func(i, j int) bool {
		if used[i].MatchCount != used[j].MatchCount {
			return used[i].MatchCount > used[j].MatchCount
		}
		return used[i].ID < used[j].ID
	})
	if len(used) > 5 {
		used = used[:5]
	}
	for _, rule := range used {
		stats.TopRules = append(stats.TopRules, RuleStat{
			Name:       rule.Name,
			MatchCount: rule.MatchCount,
			LastUsed:   rule.LastUsed,
		})
	}
	return stats
}

// writeThrough persists a rule best effort; must be called with the mutex
// held
func (uc *ReplyUsecase) writeThrough(ctx context.Context, rule *domain.ReplyRule) {
	if uc.ruleRepo == nil {
		return
	}
	if err := uc.ruleRepo.Save(ctx, rule); err != nil {
		fmt.Printf("[Engine] Failed to persist rule %s: %v\n", rule.ID, err)
	}
}
