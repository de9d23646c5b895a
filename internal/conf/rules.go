package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"

	"gopkg.in/yaml.v3"
)

// RulesConfig contains seed rules loaded from YAML
type RulesConfig struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one rule definition in the seed file
type RuleEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	TriggerType  string `yaml:"trigger_type"`
	TriggerValue string `yaml:"trigger_value"`
	ReplyType    string `yaml:"reply_type"`
	ReplyContent string `yaml:"reply_content"`
	IsActive     *bool  `yaml:"is_active"`
	Priority     int    `yaml:"priority"`
	Cooldown     int    `yaml:"cooldown"`
}

// LoadRulesConfig loads seed rules from a YAML file. When no file is found
// the built-in default set is returned.
func LoadRulesConfig(configPath string) (*RulesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/rules.yaml",
			"./configs/rules.yaml",
			"/etc/wa-autoreply/rules.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "rules.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No rules.yaml found, using built-in defaults")
		return DefaultRulesConfig(), nil
	}

	fmt.Printf("[Config] Loading seed rules from: %s\n", loadedPath)

	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse rules.yaml: %w", err)
	}

	return &config, nil
}

// DefaultRulesConfig returns the built-in seed rule set
func DefaultRulesConfig() *RulesConfig {
	return &RulesConfig{
		Rules: []RuleEntry{
			{
				ID:           "welcome",
				Name:         "Welcome message",
				TriggerType:  "keyword",
				TriggerValue: "hello,hi,hey",
				ReplyType:    "text",
				ReplyContent: "Welcome {name}! How can I help you?",
				Priority:     10,
			},
			{
				ID:           "help",
				Name:         "Help request",
				TriggerType:  "keyword",
				TriggerValue: "help,support",
				ReplyType:    "text",
				ReplyContent: "I can help with link collection, group joining and auto posting. What do you need?",
				Priority:     10,
			},
			{
				ID:           "thank_you",
				Name:         "Thanks",
				TriggerType:  "keyword",
				TriggerValue: "thanks,thank you,thx",
				ReplyType:    "text",
				ReplyContent: "You're welcome! Glad I could help.",
				Priority:     5,
			},
			{
				ID:           "bot_info",
				Name:         "Bot info",
				TriggerType:  "keyword",
				TriggerValue: "who are you,info,about",
				ReplyType:    "text",
				ReplyContent: "I'm an automated assistant. I collect links, post on schedule and join groups.",
				Priority:     8,
			},
		},
	}
}

// ToRules converts the seed entries to domain rules. Active defaults to
// true when the field is omitted.
func (c *RulesConfig) ToRules() []*domain.ReplyRule {
	rules := make([]*domain.ReplyRule, 0, len(c.Rules))
	for _, entry := range c.Rules {
		active := true
		if entry.IsActive != nil {
			active = *entry.IsActive
		}
		rules = append(rules, &domain.ReplyRule{
			ID:           entry.ID,
			Name:         entry.Name,
			TriggerType:  domain.TriggerType(entry.TriggerType),
			TriggerValue: entry.TriggerValue,
			ReplyType:    domain.ReplyType(entry.ReplyType),
			ReplyContent: entry.ReplyContent,
			IsActive:     active,
			Priority:     entry.Priority,
			Cooldown:     entry.Cooldown,
		})
	}
	return rules
}
