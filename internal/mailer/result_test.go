package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalResult(t *testing.T) {
	msg := &EmailMessage{
		To:      []string{"a@example.com", "b@example.com"},
		Cc:      []string{"c@example.com"},
		Subject: "hello",
	}
	atts := []Attachment{{Filename: "report.pdf", Content: []byte("x")}}

	res := TransactionalResult("12345", msg, atts)

	assert.Equal(t, "12345", res.DeliveryID)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, res.Recipients)
	assert.Equal(t, 3, res.RecipientCount)
	assert.Equal(t, []string{"report.pdf"}, res.Attachments)
	assert.Equal(t, 1, res.AttachmentCount)
	assert.False(t, res.Scheduled)
	assert.Contains(t, res.Status, "12345")
}

func TestBulkResultImmediate(t *testing.T) {
	msg := &EmailMessage{Subject: "campaign"}

	res := BulkResult("777", msg, 35, nil, time.Time{})

	assert.Equal(t, "777", res.DeliveryID)
	assert.Equal(t, 35, res.RecipientCount)
	assert.False(t, res.Scheduled)
	assert.Empty(t, res.ScheduleAt)
	assert.Contains(t, res.Status, "immediate")
}

func TestBulkResultScheduled(t *testing.T) {
	msg := &EmailMessage{Subject: "campaign"}
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	res := BulkResult("778", msg, 10, nil, at)

	assert.True(t, res.Scheduled)
	assert.Equal(t, "2025-07-01T09:00:00Z", res.ScheduleAt)
	assert.Contains(t, res.Status, "scheduled for 2025-07-01T09:00:00Z")
}
