package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
)

func TestRuleRepo_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRuleRepo(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatalf("NewRuleRepo returned error: %v", err)
	}
	defer repo.Close()

	rule := &domain.ReplyRule{
		ID:           "r1",
		Name:         "Greeting",
		TriggerType:  domain.TriggerKeyword,
		TriggerValue: "hello,hi",
		ReplyType:    domain.ReplyText,
		ReplyContent: "Hi {name}!",
		IsActive:     true,
		Priority:     10,
		Cooldown:     60,
		MatchCount:   3,
		LastUsed:     time.Now().Truncate(time.Second),
	}

	if err := repo.Save(ctx, rule); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	rules, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(rules))
	}

	loaded := rules[0]
	if loaded.ID != "r1" || loaded.Name != "Greeting" {
		t.Errorf("Identity mismatch: %+v", loaded)
	}
	if loaded.TriggerType != domain.TriggerKeyword || loaded.TriggerValue != "hello,hi" {
		t.Errorf("Trigger mismatch: %+v", loaded)
	}
	if loaded.ReplyType != domain.ReplyText || loaded.ReplyContent != "Hi {name}!" {
		t.Errorf("Reply mismatch: %+v", loaded)
	}
	if !loaded.IsActive || loaded.Priority != 10 || loaded.Cooldown != 60 {
		t.Errorf("Flags mismatch: %+v", loaded)
	}
	if loaded.MatchCount != 3 {
		t.Errorf("Expected match count 3, got %d", loaded.MatchCount)
	}
	if !loaded.LastUsed.Equal(rule.LastUsed) {
		t.Errorf("Expected last used %v, got %v", rule.LastUsed, loaded.LastUsed)
	}
}

func TestRuleRepo_SaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRuleRepo(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	rule := &domain.ReplyRule{
		ID: "r1", Name: "v1", TriggerType: domain.TriggerContains,
		TriggerValue: "x", ReplyType: domain.ReplyText, ReplyContent: "y",
		IsActive: true,
	}
	if err := repo.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}

	rule.Name = "v2"
	rule.Priority = 5
	if err := repo.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}

	rules, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule after replace, got %d", len(rules))
	}
	if rules[0].Name != "v2" || rules[0].Priority != 5 {
		t.Errorf("Expected replaced rule, got %+v", rules[0])
	}
}

func TestRuleRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRuleRepo(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	rule := &domain.ReplyRule{
		ID: "r1", Name: "n", TriggerType: domain.TriggerExact,
		TriggerValue: "x", ReplyType: domain.ReplyText, ReplyContent: "y",
	}
	if err := repo.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	rules, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 0 {
		t.Errorf("Expected empty store after delete, got %d rules", len(rules))
	}

	// Deleting a missing id is not an error
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing id returned error: %v", err)
	}
}

func TestRuleRepo_LoadAllOrdering(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRuleRepo(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	for _, r := range []*domain.ReplyRule{
		{ID: "a", Name: "zeta", TriggerType: domain.TriggerExact, TriggerValue: "x", ReplyType: domain.ReplyText, ReplyContent: "y", Priority: 1},
		{ID: "b", Name: "alpha", TriggerType: domain.TriggerExact, TriggerValue: "x", ReplyType: domain.ReplyText, ReplyContent: "y", Priority: 10},
		{ID: "c", Name: "beta", TriggerType: domain.TriggerExact, TriggerValue: "x", ReplyType: domain.ReplyText, ReplyContent: "y", Priority: 10},
	} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	rules, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(rules))
	}
	got := []string{rules[0].ID, rules[1].ID, rules[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}
