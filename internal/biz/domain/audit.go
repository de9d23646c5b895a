package domain

import "time"

// ReplyRecord represents an audit log entry for an accepted match
type ReplyRecord struct {
	ID           int64
	MessageID    string
	Sender       string
	Body         string // original message body, truncated for storage
	RuleID       string
	RuleName     string
	ReplyType    ReplyType
	ReplyContent string // generated content, truncated for storage
	CreatedAt    time.Time
}

// OutboxEntry represents a generated reply queued for delivery
type OutboxEntry struct {
	ID        int64
	Recipient string
	Payload   *Reply
	CreatedAt time.Time
	Sent      bool
	SentAt    time.Time
}
