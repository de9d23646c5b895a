package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

// ruleRecord is the wire form of a rule for export/import. Usage counters
// are intentionally excluded so a round-trip reproduces the rule definitions,
// not the runtime state.
type ruleRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TriggerType  string `json:"trigger_type"`
	TriggerValue string `json:"trigger_value"`
	ReplyType    string `json:"reply_type"`
	ReplyContent string `json:"reply_content"`
	IsActive     bool   `json:"is_active"`
	Priority     int    `json:"priority"`
	Cooldown     int    `json:"cooldown"`
}

// ruleExport is the export envelope
type ruleExport struct {
	ExportedAt time.Time    `json:"exported_at"`
	TotalRules int          `json:"total_rules"`
	Rules      []ruleRecord `json:"rules"`
}

// ExportRules writes all rules as a JSON envelope and returns the rule count
func (uc *ReplyUsecase) ExportRules(w io.Writer) (int, error) {
	rules := uc.ListRules(false)

	export := ruleExport{
		ExportedAt: time.Now(),
		TotalRules: len(rules),
		Rules:      make([]ruleRecord, 0, len(rules)),
	}
	for _, rule := range rules {
		export.Rules = append(export.Rules, ruleRecord{
			ID:           rule.ID,
			Name:         rule.Name,
			TriggerType:  string(rule.TriggerType),
			TriggerValue: rule.TriggerValue,
			ReplyType:    string(rule.ReplyType),
			ReplyContent: rule.ReplyContent,
			IsActive:     rule.IsActive,
			Priority:     rule.Priority,
			Cooldown:     rule.Cooldown,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	return len(rules), nil
}

// ImportRules reads a JSON export envelope. Records whose id already exists
// update the stored rule, the rest are inserted. Malformed records are
// logged and skipped. Returns the number of added and updated rules.
func (uc *ReplyUsecase) ImportRules(ctx context.Context, r io.Reader) (added, updated int, err error) {
	var export ruleExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("decode import: %w", err)
	}

	for _, record := range export.Rules {
		if _, exists := uc.GetRule(record.ID); record.ID != "" && exists {
			update := &domain.RuleUpdate{
				Name:         &record.Name,
				TriggerType:  &record.TriggerType,
				TriggerValue: &record.TriggerValue,
				ReplyType:    &record.ReplyType,
				ReplyContent: &record.ReplyContent,
				IsActive:     &record.IsActive,
				Priority:     &record.Priority,
				Cooldown:     &record.Cooldown,
			}
			if err := uc.UpdateRule(ctx, record.ID, update); err != nil {
				fmt.Printf("[Engine] Skipping import update %s: %v\n", record.ID, err)
				continue
			}
			updated++
			continue
		}

		triggerType, terr := domain.ParseTriggerType(record.TriggerType)
		if terr != nil {
			fmt.Printf("[Engine] Skipping import record %s: %v\n", record.ID, terr)
			continue
		}
		replyType, rerr := domain.ParseReplyType(record.ReplyType)
		if rerr != nil {
			fmt.Printf("[Engine] Skipping import record %s: %v\n", record.ID, rerr)
			continue
		}
		rule := &domain.ReplyRule{
			ID:           record.ID,
			Name:         record.Name,
			TriggerType:  triggerType,
			TriggerValue: record.TriggerValue,
			ReplyType:    replyType,
			ReplyContent: record.ReplyContent,
			IsActive:     record.IsActive,
			Priority:     record.Priority,
			Cooldown:     record.Cooldown,
		}
		if _, err := uc.AddRule(ctx, rule); err != nil {
			fmt.Printf("[Engine] Skipping import record %s: %v\n", record.ID, err)
			continue
		}
		added++
	}

	fmt.Printf("[Engine] Imported %d new and %d updated rules\n", added, updated)
	return added, updated, nil
}
