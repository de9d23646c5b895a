package domain

import (
	"strings"
	"time"
)

// Message represents an inbound message entity
type Message struct {
	ID         string
	Sender     string
	SenderName string
	Body       string
	CreateTime time.Time
}

// IsEmpty checks if the message lacks a sender or a body after trimming
func (m *Message) IsEmpty() bool {
	return m.Sender == "" || strings.TrimSpace(m.Body) == ""
}
