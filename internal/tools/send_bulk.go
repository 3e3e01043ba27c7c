package tools

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-blastengine/internal/config"
	"github.com/brandon/mcp-blastengine/internal/deliverylog"
	"github.com/brandon/mcp-blastengine/internal/files"
	"github.com/brandon/mcp-blastengine/internal/mailer"
)

// SendBulkEmailTool sends a campaign through the provider's bulk delivery
// sequence, optionally deferred to a future time.
type SendBulkEmailTool struct {
	config     *config.Config
	client     DeliveryClient
	deliveries DeliveryRecorder
	files      files.Resolver
	logger     *logrus.Logger
}

// NewSendBulkEmailTool creates a new bulk send tool
func NewSendBulkEmailTool(cfg *config.Config, client DeliveryClient, deliveries DeliveryRecorder, resolver files.Resolver, logger *logrus.Logger) *SendBulkEmailTool {
	return &SendBulkEmailTool{
		config:     cfg,
		client:     client,
		deliveries: deliveries,
		files:      resolver,
		logger:     logger,
	}
}

// Name returns the tool name
func (t *SendBulkEmailTool) Name() string {
	return "send_bulk_email"
}

// Description returns the tool description
func (t *SendBulkEmailTool) Description() string {
	return "Send a bulk email campaign via Blastengine to up to 50 recipients from an inline list and/or a CSV file, optionally scheduled for a future time"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SendBulkEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"recipients": map[string]interface{}{
				"type":        "string",
				"description": "Recipient email addresses (comma-separated)",
			},
			"recipients_file": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Handle of a single-column CSV file of recipient addresses",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Email subject",
			},
			"body_text": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Plain text body (at least one of body_text/body_html required)",
			},
			"body_html": map[string]interface{}{
				"type":        "string",
				"description": "Optional: HTML body",
			},
			"from_address": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Sender address, falls back to the configured default",
			},
			"from_name": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Sender display name",
			},
			"schedule_at": map[string]interface{}{
				"type":        "string",
				"description": "Optional: ISO-8601 timestamp in the future; omitted means immediate delivery",
			},
			"attachments": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Optional: Attachment file handles (max 10, 1 MiB total)",
			},
		},
		"required": []string{"subject"},
	}
}

// Execute executes the tool
func (t *SendBulkEmailTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	raw := stringListParam(params, "recipients")

	skipped := 0
	if handle := stringParam(params, "recipients_file"); handle != "" {
		file, err := t.files.Resolve(handle)
		if err != nil {
			return nil, err
		}
		csvAddrs, dropped, err := mailer.ReadRecipientCSV(bytes.NewReader(file.Content))
		if err != nil {
			return nil, err
		}
		skipped = dropped
		if skipped > 0 {
			t.logger.WithFields(logrus.Fields{
				"file":    file.Filename,
				"skipped": skipped,
			}).Warn("Dropped rows from recipient CSV that were not email addresses")
		}
		raw = append(raw, csvAddrs...)
	}

	recipients, err := mailer.NormalizeAddressList(raw)
	if err != nil {
		return nil, err
	}

	msg := &mailer.EmailMessage{
		Subject:     stringParam(params, "subject"),
		BodyText:    stringParam(params, "body_text"),
		BodyHTML:    stringParam(params, "body_html"),
		FromAddress: t.senderAddress(params),
		FromName:    t.senderName(params),
	}

	if err := mailer.ValidateMessage(msg); err != nil {
		return nil, err
	}
	if err := mailer.ValidateRecipients("recipients", recipients, mailer.MaxBulkRecipients); err != nil {
		return nil, err
	}

	scheduleAt, err := mailer.ParseScheduleAt(stringParam(params, "schedule_at"), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	atts, err := files.ResolveAll(t.files, stringListParam(params, "attachments"))
	if err != nil {
		return nil, err
	}
	if err := mailer.ValidateAttachments(atts); err != nil {
		return nil, err
	}

	deliveryID, err := t.client.SendBulk(ctx, msg, recipients, scheduleAt, atts)
	if err != nil {
		return nil, fmt.Errorf("failed to send bulk email: %w", err)
	}

	result := mailer.BulkResult(deliveryID, msg, len(recipients), atts, scheduleAt)
	t.record(result)

	if skipped > 0 {
		return struct {
			*mailer.DeliveryResult
			Note string `json:"note"`
		}{result, fmt.Sprintf("%d row(s) in the recipient CSV were not email addresses and were skipped", skipped)}, nil
	}
	return result, nil
}

func (t *SendBulkEmailTool) senderAddress(params map[string]interface{}) string {
	if addr := stringParam(params, "from_address"); addr != "" {
		return addr
	}
	return t.config.DefaultFromAddress
}

func (t *SendBulkEmailTool) senderName(params map[string]interface{}) string {
	if name := stringParam(params, "from_name"); name != "" {
		return name
	}
	return t.config.DefaultFromName
}

func (t *SendBulkEmailTool) record(result *mailer.DeliveryResult) {
	entry := &deliverylog.Entry{
		DeliveryID:      result.DeliveryID,
		Kind:            "bulk",
		RecipientCount:  result.RecipientCount,
		AttachmentCount: result.AttachmentCount,
		Scheduled:       result.Scheduled,
		ScheduleAt:      result.ScheduleAt,
	}
	if err := t.deliveries.Record(entry); err != nil {
		t.logger.WithError(err).WithField("delivery_id", result.DeliveryID).Warn("Failed to record delivery")
	}
}
