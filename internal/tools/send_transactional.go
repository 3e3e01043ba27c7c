package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-blastengine/internal/config"
	"github.com/brandon/mcp-blastengine/internal/deliverylog"
	"github.com/brandon/mcp-blastengine/internal/files"
	"github.com/brandon/mcp-blastengine/internal/mailer"
)

// SendTransactionalEmailTool sends a single immediately-delivered email
type SendTransactionalEmailTool struct {
	config     *config.Config
	client     DeliveryClient
	deliveries DeliveryRecorder
	files      files.Resolver
	logger     *logrus.Logger
}

// NewSendTransactionalEmailTool creates a new transactional send tool
func NewSendTransactionalEmailTool(cfg *config.Config, client DeliveryClient, deliveries DeliveryRecorder, resolver files.Resolver, logger *logrus.Logger) *SendTransactionalEmailTool {
	return &SendTransactionalEmailTool{
		config:     cfg,
		client:     client,
		deliveries: deliveries,
		files:      resolver,
		logger:     logger,
	}
}

// Name returns the tool name
func (t *SendTransactionalEmailTool) Name() string {
	return "send_transactional_email"
}

// Description returns the tool description
func (t *SendTransactionalEmailTool) Description() string {
	return "Send a single transactional email via Blastengine with support for text, HTML, attachments, CC, BCC"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SendTransactionalEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"to": map[string]interface{}{
				"type":        "string",
				"description": "Recipient email address(es) (comma-separated, max 10)",
			},
			"cc": map[string]interface{}{
				"type":        "string",
				"description": "Optional: CC recipients (comma-separated, max 10)",
			},
			"bcc": map[string]interface{}{
				"type":        "string",
				"description": "Optional: BCC recipients (comma-separated, max 10)",
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
			"reply_to": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Reply-To header",
			},
			"custom_headers": map[string]interface{}{
				"type":        "object",
				"description": "Optional: Custom headers (header name to value)",
			},
			"attachments": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Optional: Attachment file handles (max 10, 1 MiB total)",
			},
		},
		"required": []string{"to", "subject"},
	}
}

// Execute executes the tool
func (t *SendTransactionalEmailTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	to, err := mailer.NormalizeAddressList(stringListParam(params, "to"))
	if err != nil {
		return nil, err
	}
	cc, err := mailer.NormalizeAddressList(stringListParam(params, "cc"))
	if err != nil {
		return nil, err
	}
	bcc, err := mailer.NormalizeAddressList(stringListParam(params, "bcc"))
	if err != nil {
		return nil, err
	}

	headers, err := headersParam(params, "custom_headers")
	if err != nil {
		return nil, err
	}

	msg := &mailer.EmailMessage{
		To:          to,
		Cc:          cc,
		Bcc:         bcc,
		Subject:     stringParam(params, "subject"),
		BodyText:    stringParam(params, "body_text"),
		BodyHTML:    stringParam(params, "body_html"),
		FromAddress: t.senderAddress(params),
		FromName:    t.senderName(params),
		ReplyTo:     stringParam(params, "reply_to"),
		Headers:     headers,
	}

	if err := mailer.ValidateMessage(msg); err != nil {
		return nil, err
	}
	if err := mailer.ValidateRecipients("to", to, mailer.MaxTransactionalRecipients); err != nil {
		return nil, err
	}
	if len(cc) > 0 {
		if err := mailer.ValidateRecipients("cc", cc, mailer.MaxTransactionalRecipients); err != nil {
			return nil, err
		}
	}
	if len(bcc) > 0 {
		if err := mailer.ValidateRecipients("bcc", bcc, mailer.MaxTransactionalRecipients); err != nil {
			return nil, err
		}
	}

	atts, err := files.ResolveAll(t.files, stringListParam(params, "attachments"))
	if err != nil {
		return nil, err
	}
	if err := mailer.ValidateAttachments(atts); err != nil {
		return nil, err
	}

	deliveryID, err := t.client.SendTransactional(ctx, msg, atts)
	if err != nil {
		return nil, fmt.Errorf("failed to send transactional email: %w", err)
	}

	result := mailer.TransactionalResult(deliveryID, msg, atts)
	t.record(result)
	return result, nil
}

func (t *SendTransactionalEmailTool) senderAddress(params map[string]interface{}) string {
	if addr := stringParam(params, "from_address"); addr != "" {
		return addr
	}
	return t.config.DefaultFromAddress
}

func (t *SendTransactionalEmailTool) senderName(params map[string]interface{}) string {
	if name := stringParam(params, "from_name"); name != "" {
		return name
	}
	return t.config.DefaultFromName
}

func (t *SendTransactionalEmailTool) record(result *mailer.DeliveryResult) {
	entry := &deliverylog.Entry{
		DeliveryID:      result.DeliveryID,
		Kind:            "transactional",
		RecipientCount:  result.RecipientCount,
		AttachmentCount: result.AttachmentCount,
	}
	if err := t.deliveries.Record(entry); err != nil {
		t.logger.WithError(err).WithField("delivery_id", result.DeliveryID).Warn("Failed to record delivery")
	}
}
