package domain

import "testing"

func TestBuildReply_TextPlaceholder(t *testing.T) {
	msg := &Message{ID: "m1", Sender: "u1", Body: "well hi there"}
	rule := &ReplyRule{
		ID:           "greet",
		Name:         "Greeting",
		TriggerType:  TriggerKeyword,
		TriggerValue: "hello,hi",
		ReplyType:    ReplyText,
		ReplyContent: "Hi {name}!",
		Priority:     10,
	}

	reply, err := BuildReply(msg, rule)
	if err != nil {
		t.Fatalf("BuildReply returned error: %v", err)
	}
	if reply.Type != ReplyText {
		t.Errorf("Expected type text, got %s", reply.Type)
	}
	if reply.Content != "Hi u1!" {
		t.Errorf("Expected 'Hi u1!', got %q", reply.Content)
	}
	if reply.RuleID != "greet" || reply.RuleName != "Greeting" {
		t.Errorf("Expected rule id/name carried on payload, got %+v", reply)
	}
}

func TestBuildReply_Media(t *testing.T) {
	msg := &Message{Sender: "u1", Body: "menu"}

	for _, rt := range []ReplyType{ReplyImage, ReplyVideo, ReplyDocument} {
		rule := &ReplyRule{ID: "r", ReplyType: rt, ReplyContent: "media/menu.png"}
		reply, err := BuildReply(msg, rule)
		if err != nil {
			t.Fatalf("BuildReply(%s) returned error: %v", rt, err)
		}
		if reply.MediaPath != "media/menu.png" {
			t.Errorf("%s: expected media path copied verbatim, got %q", rt, reply.MediaPath)
		}
	}
}

func TestBuildReply_Contact(t *testing.T) {
	msg := &Message{Sender: "u1", Body: "contact"}
	rule := &ReplyRule{ID: "r", ReplyType: ReplyContact, ReplyContent: "BEGIN:VCARD..."}

	reply, err := BuildReply(msg, rule)
	if err != nil {
		t.Fatalf("BuildReply returned error: %v", err)
	}
	if reply.ContactInfo != "BEGIN:VCARD..." {
		t.Errorf("Expected contact info copied verbatim, got %q", reply.ContactInfo)
	}
}

func TestBuildReply_Buttons(t *testing.T) {
	msg := &Message{Sender: "u1", Body: "options"}
	rule := &ReplyRule{
		ID:           "r",
		ReplyType:    ReplyButtons,
		ReplyContent: `[{"id":"b1","title":"Yes"},{"id":"b2","title":"No"}]`,
	}

	reply, err := BuildReply(msg, rule)
	if err != nil {
		t.Fatalf("BuildReply returned error: %v", err)
	}
	if len(reply.Buttons) != 2 {
		t.Fatalf("Expected 2 buttons, got %d", len(reply.Buttons))
	}
	if reply.Buttons[0].Title != "Yes" {
		t.Errorf("Expected first button 'Yes', got %q", reply.Buttons[0].Title)
	}
}

func TestBuildReply_List(t *testing.T) {
	msg := &Message{Sender: "u1", Body: "menu"}
	rule := &ReplyRule{
		ID:           "r",
		ReplyType:    ReplyList,
		ReplyContent: `[{"title":"Drinks","items":[{"id":"i1","title":"Tea"}]}]`,
	}

	reply, err := BuildReply(msg, rule)
	if err != nil {
		t.Fatalf("BuildReply returned error: %v", err)
	}
	if len(reply.ListItems) != 1 || len(reply.ListItems[0].Items) != 1 {
		t.Fatalf("Expected one section with one item, got %+v", reply.ListItems)
	}
	if reply.ListItems[0].Items[0].Title != "Tea" {
		t.Errorf("Expected item 'Tea', got %q", reply.ListItems[0].Items[0].Title)
	}
}

func TestBuildReply_MalformedStructuredContent(t *testing.T) {
	msg := &Message{Sender: "u1", Body: "options"}
	rule := &ReplyRule{ID: "r", ReplyType: ReplyButtons, ReplyContent: `{not json`}

	if _, err := BuildReply(msg, rule); err == nil {
		t.Error("Expected error for malformed buttons content")
	}
}

func TestFallbackReply(t *testing.T) {
	reply := FallbackReply()
	if reply.Type != ReplyText {
		t.Errorf("Expected text fallback, got %s", reply.Type)
	}
	if reply.Content == "" {
		t.Error("Expected non-empty fallback content")
	}
}
