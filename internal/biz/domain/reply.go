package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Button represents a single reply button
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListItem represents a single entry of a list reply
type ListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups list items under a title
type ListSection struct {
	Title string     `json:"title"`
	Items []ListItem `json:"items"`
}

// Reply represents the generated outbound payload for a matched rule
type Reply struct {
	Type        ReplyType     `json:"type"`
	Content     string        `json:"content,omitempty"`
	RuleID      string        `json:"rule_id,omitempty"`
	RuleName    string        `json:"rule_name,omitempty"`
	MediaPath   string        `json:"media_path,omitempty"`
	ContactInfo string        `json:"contact_info,omitempty"`
	Buttons     []Button      `json:"buttons,omitempty"`
	ListItems   []ListSection `json:"list_items,omitempty"`
}

// fallbackText is substituted when reply generation fails
const fallbackText = "an error occurred generating the reply"

// FallbackReply returns the fixed text payload used when generation fails
func FallbackReply() *Reply {
	return &Reply{Type: ReplyText, Content: fallbackText}
}

// BuildReply builds the outbound payload for a matched rule. The text
// placeholder {name} is substituted with the sender identifier; no display
// name resolution happens here. Structured content (buttons, list) is
// decoded from the rule's JSON content; a decode failure fails the whole
// build so the caller can fall back.
func BuildReply(msg *Message, rule *ReplyRule) (*Reply, error) {
	reply := &Reply{
		Type:     rule.ReplyType,
		Content:  rule.ReplyContent,
		RuleID:   rule.ID,
		RuleName: rule.Name,
	}

	switch rule.ReplyType {
	case ReplyText:
		reply.Content = strings.ReplaceAll(rule.ReplyContent, "{name}", msg.Sender)

	case ReplyImage, ReplyVideo, ReplyDocument:
		reply.MediaPath = rule.ReplyContent

	case ReplyContact:
		reply.ContactInfo = rule.ReplyContent

	case ReplyButtons:
		if err := json.Unmarshal([]byte(rule.ReplyContent), &reply.Buttons); err != nil {
			return nil, fmt.Errorf("decode buttons content: %w", err)
		}

	case ReplyList:
		if err := json.Unmarshal([]byte(rule.ReplyContent), &reply.ListItems); err != nil {
			return nil, fmt.Errorf("decode list content: %w", err)
		}
	}

	return reply, nil
}
