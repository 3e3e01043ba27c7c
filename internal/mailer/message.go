package mailer

import (
	"path/filepath"
	"strings"
)

// EmailMessage represents an email to be sent through the provider
type EmailMessage struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	BodyText    string
	BodyHTML    string
	FromAddress string
	FromName    string
	ReplyTo     string
	Headers     map[string]string
}

// Attachment represents an email attachment. Content is read once per
// invocation and discarded after the HTTP call completes.
type Attachment struct {
	Filename string
	Content  []byte
}

// Ext returns the lowercased filename extension, including the dot.
func (a Attachment) Ext() string {
	return strings.ToLower(filepath.Ext(a.Filename))
}

// DeliveryResult is the success payload returned to the host runtime
type DeliveryResult struct {
	DeliveryID      string   `json:"delivery_id"`
	Subject         string   `json:"subject"`
	Recipients      []string `json:"recipients,omitempty"`
	Cc              []string `json:"cc,omitempty"`
	Bcc             []string `json:"bcc,omitempty"`
	RecipientCount  int      `json:"recipient_count"`
	Attachments     []string `json:"attachments,omitempty"`
	AttachmentCount int      `json:"attachment_count"`
	Scheduled       bool     `json:"scheduled"`
	ScheduleAt      string   `json:"schedule_at,omitempty"`
	Status          string   `json:"status"`
}
