package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TriggerType identifies how a rule's trigger value is interpreted
type TriggerType string

const (
	TriggerKeyword    TriggerType = "keyword"     // comma-separated keyword list
	TriggerRegex      TriggerType = "regex"       // regular expression, searched case-insensitively
	TriggerContains   TriggerType = "contains"    // substring
	TriggerExact      TriggerType = "exact"       // full-body equality
	TriggerStartsWith TriggerType = "starts_with" // prefix
	TriggerEndsWith   TriggerType = "ends_with"   // suffix
)

// ReplyType identifies how a rule's reply content is interpreted
type ReplyType string

const (
	ReplyText     ReplyType = "text"
	ReplyImage    ReplyType = "image"
	ReplyVideo    ReplyType = "video"
	ReplyDocument ReplyType = "document"
	ReplyContact  ReplyType = "contact"
	ReplyButtons  ReplyType = "buttons"
	ReplyList     ReplyType = "list"
)

// ParseTriggerType parses a trigger type tag, rejecting unknown values
func ParseTriggerType(s string) (TriggerType, error) {
	switch t := TriggerType(s); t {
	case TriggerKeyword, TriggerRegex, TriggerContains, TriggerExact, TriggerStartsWith, TriggerEndsWith:
		return t, nil
	}
	return "", &ValidationError{Field: "trigger_type", Message: fmt.Sprintf("unknown value %q", s)}
}

// ParseReplyType parses a reply type tag, rejecting unknown values
func ParseReplyType(s string) (ReplyType, error) {
	switch t := ReplyType(s); t {
	case ReplyText, ReplyImage, ReplyVideo, ReplyDocument, ReplyContact, ReplyButtons, ReplyList:
		return t, nil
	}
	return "", &ValidationError{Field: "reply_type", Message: fmt.Sprintf("unknown value %q", s)}
}

// ValidationError reports a rejected rule definition
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ReplyRule represents an auto-reply rule entity
type ReplyRule struct {
	ID           string
	Name         string
	TriggerType  TriggerType
	TriggerValue string
	ReplyType    ReplyType
	ReplyContent string
	IsActive     bool
	Priority     int
	Cooldown     int // seconds between replies to the same sender, 0 disables
	MatchCount   int64
	LastUsed     time.Time
}

// Validate checks that all required fields are present and enum tags are known
func (r *ReplyRule) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if _, err := ParseTriggerType(string(r.TriggerType)); err != nil {
		return err
	}
	if r.TriggerValue == "" {
		return &ValidationError{Field: "trigger_value", Message: "required"}
	}
	if _, err := ParseReplyType(string(r.ReplyType)); err != nil {
		return err
	}
	if r.ReplyContent == "" {
		return &ValidationError{Field: "reply_content", Message: "required"}
	}
	if r.Cooldown < 0 {
		return &ValidationError{Field: "cooldown", Message: "must be non-negative"}
	}
	return nil
}

// Matches evaluates the rule's trigger against a message body.
// An invalid regex pattern is returned as an error so the caller can log it
// and keep evaluating the remaining rules.
func (r *ReplyRule) Matches(body string) (bool, error) {
	bodyLower := strings.ToLower(body)
	triggerLower := strings.ToLower(r.TriggerValue)

	switch r.TriggerType {
	case TriggerKeyword:
		for _, keyword := range strings.Split(triggerLower, ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword == "" {
				continue
			}
			if strings.Contains(bodyLower, keyword) {
				return true, nil
			}
		}
		return false, nil

	case TriggerRegex:
		re, err := regexp.Compile("(?i)" + r.TriggerValue)
		if err != nil {
			return false, fmt.Errorf("invalid regex trigger: %w", err)
		}
		return re.MatchString(body), nil

	case TriggerContains:
		return strings.Contains(bodyLower, triggerLower), nil

	case TriggerExact:
		return bodyLower == triggerLower, nil

	case TriggerStartsWith:
		return strings.HasPrefix(bodyLower, triggerLower), nil

	case TriggerEndsWith:
		return strings.HasSuffix(bodyLower, triggerLower), nil
	}

	return false, nil
}

// RuleUpdate carries a partial rule update; nil fields are left untouched
type RuleUpdate struct {
	Name         *string `json:"name"`
	TriggerType  *string `json:"trigger_type"`
	TriggerValue *string `json:"trigger_value"`
	ReplyType    *string `json:"reply_type"`
	ReplyContent *string `json:"reply_content"`
	IsActive     *bool   `json:"is_active"`
	Priority     *int    `json:"priority"`
	Cooldown     *int    `json:"cooldown"`
}

// Apply applies the non-nil fields to the rule, validating enum tags
func (u *RuleUpdate) Apply(r *ReplyRule) error {
	if u.TriggerType != nil {
		t, err := ParseTriggerType(*u.TriggerType)
		if err != nil {
			return err
		}
		r.TriggerType = t
	}
	if u.ReplyType != nil {
		t, err := ParseReplyType(*u.ReplyType)
		if err != nil {
			return err
		}
		r.ReplyType = t
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.TriggerValue != nil {
		r.TriggerValue = *u.TriggerValue
	}
	if u.ReplyContent != nil {
		r.ReplyContent = *u.ReplyContent
	}
	if u.IsActive != nil {
		r.IsActive = *u.IsActive
	}
	if u.Priority != nil {
		r.Priority = *u.Priority
	}
	if u.Cooldown != nil {
		if *u.Cooldown < 0 {
			return &ValidationError{Field: "cooldown", Message: "must be non-negative"}
		}
		r.Cooldown = *u.Cooldown
	}
	return nil
}
