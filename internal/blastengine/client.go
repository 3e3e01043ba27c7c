// Package blastengine wraps the Blastengine email-delivery REST API:
// bearer-token authentication, the transactional send endpoint, and the
// four-step bulk delivery sequence.
package blastengine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brandon/mcp-blastengine/internal/mailer"
)

// DefaultBaseURL is the production Blastengine API endpoint.
const DefaultBaseURL = "https://app.engn.jp/api/v1"

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	encodeUTF8        = "UTF-8"

	// The provider requires text_part even for HTML-only messages.
	htmlOnlyTextPart = "(HTML message)"
)

// Config holds client tuning knobs. Zero values fall back to defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client is a Blastengine API client. Credentials are bound at construction
// time; the client holds no other mutable state and is safe for concurrent
// use.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
	logger     *logrus.Logger
}

// NewClient creates a client for the given credential pair.
func NewClient(loginID, apiKey string, cfg Config, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		baseURL:    baseURL,
		token:      BearerToken(loginID, apiKey),
		httpClient: newRetryTransport(&http.Client{Timeout: timeout}, maxRetries, logger),
		logger:     logger,
	}
}

// BearerToken derives the provider's API token from a credential pair:
// base64 of the lowercase hex SHA-256 digest of loginID+apiKey.
func BearerToken(loginID, apiKey string) string {
	digest := sha256.Sum256([]byte(loginID + apiKey))
	hexDigest := hex.EncodeToString(digest[:])
	return base64.StdEncoding.EncodeToString([]byte(hexDigest))
}

// CheckCredentials issues one lightweight authenticated probe. It is called
// once at startup; an authentication failure reports invalid credentials
// without echoing the key.
func (c *Client) CheckCredentials(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/usages", nil, "")
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("invalid Blastengine credentials (status %d)", apiErr.StatusCode)
		}
		return fmt.Errorf("credential check failed: %w", err)
	}
	return nil
}

// SendTransactional delivers a single message through the synchronous
// transactional endpoint and returns the provider-assigned delivery ID.
func (c *Client) SendTransactional(ctx context.Context, msg *mailer.EmailMessage, atts []mailer.Attachment) (string, error) {
	req := buildTransactionRequest(msg)

	var body []byte
	var err error
	if len(atts) > 0 {
		body, err = c.doMultipart(ctx, http.MethodPost, "/deliveries/transaction", req, atts, "")
	} else {
		body, err = c.do(ctx, http.MethodPost, "/deliveries/transaction", req, "")
	}
	if err != nil {
		return "", err
	}

	deliveryID, err := extractDeliveryID(body)
	if err != nil {
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"delivery_id": deliveryID,
		"to":          1,
		"cc":          len(req.Cc),
		"bcc":         len(req.Bcc),
		"attachments": len(atts),
	}).Info("Transactional email queued")
	return deliveryID, nil
}

// SendBulk runs the four-step bulk sequence: begin, add recipients, update
// template, commit. All steps share the delivery ID returned by begin and a
// client-generated idempotency token. A zero scheduleAt commits for
// immediate delivery. If an intermediate step fails, the sequence aborts and
// the error names the step; the partially created job is left to the
// provider to garbage-collect.
func (c *Client) SendBulk(ctx context.Context, msg *mailer.EmailMessage, recipients []string, scheduleAt time.Time, atts []mailer.Attachment) (string, error) {
	idemKey := uuid.NewString()

	begin := &BulkBeginRequest{
		From:     senderAddress(msg),
		Subject:  msg.Subject,
		Encode:   encodeUTF8,
		TextPart: textPart(msg),
		HTMLPart: msg.BodyHTML,
	}

	var body []byte
	var err error
	if len(atts) > 0 {
		body, err = c.doMultipart(ctx, http.MethodPost, "/deliveries/bulk/begin", begin, atts, idemKey)
	} else {
		body, err = c.do(ctx, http.MethodPost, "/deliveries/bulk/begin", begin, idemKey)
	}
	if err != nil {
		return "", &BulkStepError{Step: BulkStepBegin, Err: err}
	}
	deliveryID, err := extractDeliveryID(body)
	if err != nil {
		return "", &BulkStepError{Step: BulkStepBegin, Err: err}
	}

	toList := make([]BulkRecipient, len(recipients))
	for i, addr := range recipients {
		toList[i] = BulkRecipient{Email: addr}
	}
	if _, err = c.do(ctx, http.MethodPut, "/deliveries/bulk/update/"+deliveryID, &BulkUpdateRequest{To: toList}, idemKey); err != nil {
		return "", &BulkStepError{Step: BulkStepRecipients, DeliveryID: deliveryID, Err: err}
	}

	tmpl := &BulkUpdateRequest{
		Subject:  msg.Subject,
		TextPart: textPart(msg),
		HTMLPart: msg.BodyHTML,
	}
	if _, err = c.do(ctx, http.MethodPut, "/deliveries/bulk/update/"+deliveryID, tmpl, idemKey); err != nil {
		return "", &BulkStepError{Step: BulkStepTemplate, DeliveryID: deliveryID, Err: err}
	}

	if scheduleAt.IsZero() {
		body, err = c.do(ctx, http.MethodPatch, "/deliveries/bulk/commit/"+deliveryID+"/immediate", nil, idemKey)
	} else {
		commit := &BulkCommitRequest{ReservationTime: scheduleAt.Format(time.RFC3339)}
		body, err = c.do(ctx, http.MethodPatch, "/deliveries/bulk/commit/"+deliveryID, commit, idemKey)
	}
	if err != nil {
		return "", &BulkStepError{Step: BulkStepCommit, DeliveryID: deliveryID, Err: err}
	}
	if committedID, idErr := extractDeliveryID(body); idErr == nil {
		deliveryID = committedID
	}

	c.logger.WithFields(logrus.Fields{
		"delivery_id": deliveryID,
		"recipients":  len(recipients),
		"scheduled":   !scheduleAt.IsZero(),
	}).Info("Bulk email committed")
	return deliveryID, nil
}

// GetDelivery fetches provider-side status for a delivery.
func (c *Client) GetDelivery(ctx context.Context, deliveryID string) (*DeliveryStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/deliveries/"+deliveryID, nil, "")
	if err != nil {
		return nil, err
	}
	var status DeliveryStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("parsing delivery status: %w", err)
	}
	return &status, nil
}

func buildTransactionRequest(msg *mailer.EmailMessage) *TransactionRequest {
	// The provider takes a single "to" string; overflow TO recipients ride
	// along as CC.
	cc := append(append([]string{}, msg.To[1:]...), msg.Cc...)

	headers := make(map[string]string, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if msg.ReplyTo != "" {
		if _, ok := headers["Reply-To"]; !ok {
			headers["Reply-To"] = msg.ReplyTo
		}
	}
	if len(headers) == 0 {
		headers = nil
	}

	return &TransactionRequest{
		From:          senderAddress(msg),
		To:            msg.To[0],
		Cc:            cc,
		Bcc:           msg.Bcc,
		Subject:       msg.Subject,
		Encode:        encodeUTF8,
		TextPart:      textPart(msg),
		HTMLPart:      msg.BodyHTML,
		CustomHeaders: headers,
	}
}

func senderAddress(msg *mailer.EmailMessage) Address {
	name := msg.FromName
	if name == "" {
		name = msg.FromAddress
	}
	return Address{Email: msg.FromAddress, Name: name}
}

func textPart(msg *mailer.EmailMessage) string {
	if msg.BodyText != "" {
		return msg.BodyText
	}
	return htmlOnlyTextPart
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, idemKey string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		req.Header.Set("X-Idempotency-Key", idemKey)
	}

	return c.send(req)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, payload interface{}, atts []mailer.Attachment, idemKey string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="data"; filename="payload.json"`)
	hdr.Set("Content-Type", "application/json")
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}

	for _, att := range atts {
		contentType := mime.TypeByExtension(att.Ext())
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, att.Filename))
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, fmt.Errorf("building multipart request: %w", err)
		}
		if _, err := part.Write(att.Content); err != nil {
			return nil, fmt.Errorf("building multipart request: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if idemKey != "" {
		req.Header.Set("X-Idempotency-Key", idemKey)
	}

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: "provider request failed: " + sanitize(err.Error())}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp.StatusCode, body),
			Body:       sanitize(string(body)),
		}
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"method": req.Method,
			"path":   req.URL.Path,
		}).Error("Provider request failed")
		return nil, apiErr
	}
	return body, nil
}
