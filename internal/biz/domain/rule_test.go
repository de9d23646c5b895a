package domain

import (
	"errors"
	"testing"
)

func TestReplyRule_Matches_Contains(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerContains, TriggerValue: "Hello"}

	cases := []struct {
		body string
		want bool
	}{
		{"well hello there", true},
		{"HELLO", true},
		{"hell no", false},
		{"goodbye", false},
	}
	for _, c := range cases {
		got, err := rule.Matches(c.body)
		if err != nil {
			t.Fatalf("Matches(%q) returned error: %v", c.body, err)
		}
		if got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.body, got, c.want)
		}
	}
}

func TestReplyRule_Matches_Keyword(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerKeyword, TriggerValue: "a,b"}

	got, err := rule.Matches("xbz")
	if err != nil {
		t.Fatalf("Matches returned error: %v", err)
	}
	if !got {
		t.Error("Expected 'xbz' to match keyword list 'a,b' (contains b)")
	}

	got, err = rule.Matches("xyz")
	if err != nil {
		t.Fatalf("Matches returned error: %v", err)
	}
	if got {
		t.Error("Expected 'xyz' not to match keyword list 'a,b'")
	}
}

func TestReplyRule_Matches_Keyword_TrimsAndSkipsEmpty(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerKeyword, TriggerValue: " price , ,order "}

	got, _ := rule.Matches("what is the PRICE?")
	if !got {
		t.Error("Expected trimmed keyword 'price' to match")
	}

	// An empty token must not match everything
	got, _ = rule.Matches("unrelated")
	if got {
		t.Error("Expected empty keyword token to be skipped")
	}
}

func TestReplyRule_Matches_Exact(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerExact, TriggerValue: "Ping"}

	if got, _ := rule.Matches("ping"); !got {
		t.Error("Expected case-insensitive exact match")
	}
	if got, _ := rule.Matches("ping pong"); got {
		t.Error("Expected no match when body has extra text")
	}
}

func TestReplyRule_Matches_PrefixSuffix(t *testing.T) {
	prefix := &ReplyRule{TriggerType: TriggerStartsWith, TriggerValue: "order"}
	if got, _ := prefix.Matches("Order #42 please"); !got {
		t.Error("Expected prefix match")
	}
	if got, _ := prefix.Matches("my order"); got {
		t.Error("Expected no prefix match mid-body")
	}

	suffix := &ReplyRule{TriggerType: TriggerEndsWith, TriggerValue: "bye"}
	if got, _ := suffix.Matches("ok BYE"); !got {
		t.Error("Expected suffix match")
	}
	if got, _ := suffix.Matches("bye all"); got {
		t.Error("Expected no suffix match at start")
	}
}

func TestReplyRule_Matches_Regex(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerRegex, TriggerValue: `order\s+#\d+`}

	if got, _ := rule.Matches("I placed Order  #123 yesterday"); !got {
		t.Error("Expected regex to search case-insensitively anywhere in the body")
	}
	if got, _ := rule.Matches("no numbers here"); got {
		t.Error("Expected no regex match")
	}
}

func TestReplyRule_Matches_InvalidRegex(t *testing.T) {
	rule := &ReplyRule{TriggerType: TriggerRegex, TriggerValue: "(["}

	got, err := rule.Matches("anything")
	if err == nil {
		t.Fatal("Expected error for invalid regex pattern")
	}
	if got {
		t.Error("Expected no match alongside the error")
	}
}

func TestParseTriggerType(t *testing.T) {
	for _, s := range []string{"keyword", "regex", "contains", "exact", "starts_with", "ends_with"} {
		if _, err := ParseTriggerType(s); err != nil {
			t.Errorf("ParseTriggerType(%q) returned error: %v", s, err)
		}
	}

	_, err := ParseTriggerType("glob")
	if err == nil {
		t.Fatal("Expected error for unknown trigger type")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestParseReplyType(t *testing.T) {
	for _, s := range []string{"text", "image", "video", "document", "contact", "buttons", "list"} {
		if _, err := ParseReplyType(s); err != nil {
			t.Errorf("ParseReplyType(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseReplyType("sticker"); err == nil {
		t.Error("Expected error for unknown reply type")
	}
}

func TestReplyRule_Validate(t *testing.T) {
	valid := ReplyRule{
		Name:         "greet",
		TriggerType:  TriggerContains,
		TriggerValue: "hi",
		ReplyType:    ReplyText,
		ReplyContent: "hello",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid rule, got error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(r *ReplyRule)
	}{
		{"missing name", func(r *ReplyRule) { r.Name = "" }},
		{"missing trigger value", func(r *ReplyRule) { r.TriggerValue = "" }},
		{"missing reply content", func(r *ReplyRule) { r.ReplyContent = "" }},
		{"unknown trigger type", func(r *ReplyRule) { r.TriggerType = "glob" }},
		{"unknown reply type", func(r *ReplyRule) { r.ReplyType = "sticker" }},
		{"negative cooldown", func(r *ReplyRule) { r.Cooldown = -1 }},
	}
	for _, c := range cases {
		rule := valid
		c.mutate(&rule)
		if err := rule.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}

func TestRuleUpdate_Apply_Partial(t *testing.T) {
	rule := ReplyRule{
		Name:         "greet",
		TriggerType:  TriggerContains,
		TriggerValue: "hi",
		ReplyType:    ReplyText,
		ReplyContent: "hello",
		Priority:     3,
	}

	newPriority := 7
	newContent := "hey there"
	update := &RuleUpdate{Priority: &newPriority, ReplyContent: &newContent}

	if err := update.Apply(&rule); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if rule.Priority != 7 {
		t.Errorf("Expected priority 7, got %d", rule.Priority)
	}
	if rule.ReplyContent != "hey there" {
		t.Errorf("Expected updated content, got %q", rule.ReplyContent)
	}
	if rule.Name != "greet" || rule.TriggerValue != "hi" {
		t.Error("Expected untouched fields to keep their values")
	}
}

func TestRuleUpdate_Apply_RejectsUnknownEnum(t *testing.T) {
	rule := ReplyRule{TriggerType: TriggerContains, ReplyType: ReplyText}

	bad := "glob"
	if err := (&RuleUpdate{TriggerType: &bad}).Apply(&rule); err == nil {
		t.Error("Expected error for unknown trigger type")
	}
	if rule.TriggerType != TriggerContains {
		t.Error("Expected rule untouched after rejected update")
	}
}
