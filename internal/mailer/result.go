package mailer

import (
	"fmt"
	"time"
)

// TransactionalResult builds the success payload for a transactional send.
func TransactionalResult(deliveryID string, msg *EmailMessage, atts []Attachment) *DeliveryResult {
	return &DeliveryResult{
		DeliveryID:      deliveryID,
		Subject:         msg.Subject,
		Recipients:      msg.To,
		Cc:              msg.Cc,
		Bcc:             msg.Bcc,
		RecipientCount:  len(msg.To) + len(msg.Cc) + len(msg.Bcc),
		Attachments:     attachmentNames(atts),
		AttachmentCount: len(atts),
		Status:          fmt.Sprintf("transactional email queued (delivery ID %s)", deliveryID),
	}
}

// BulkResult builds the success payload for a bulk send. A zero scheduleAt
// means the campaign was committed for immediate delivery.
func BulkResult(deliveryID string, msg *EmailMessage, recipientCount int, atts []Attachment, scheduleAt time.Time) *DeliveryResult {
	res := &DeliveryResult{
		DeliveryID:      deliveryID,
		Subject:         msg.Subject,
		RecipientCount:  recipientCount,
		Attachments:     attachmentNames(atts),
		AttachmentCount: len(atts),
		Status:          fmt.Sprintf("bulk email queued for immediate delivery (delivery ID %s, %d recipients)", deliveryID, recipientCount),
	}
	if !scheduleAt.IsZero() {
		res.Scheduled = true
		res.ScheduleAt = scheduleAt.Format(time.RFC3339)
		res.Status = fmt.Sprintf("bulk email scheduled for %s (delivery ID %s, %d recipients)", res.ScheduleAt, deliveryID, recipientCount)
	}
	return res
}

func attachmentNames(atts []Attachment) []string {
	if len(atts) == 0 {
		return nil
	}
	names := make([]string, len(atts))
	for i, att := range atts {
		names[i] = att.Filename
	}
	return names
}
