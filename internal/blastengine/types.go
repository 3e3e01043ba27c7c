package blastengine

import (
	"encoding/json"
	"fmt"
)

// Address is a sender identity as the provider expects it.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TransactionRequest is the body of POST /deliveries/transaction. The
// provider takes a single string "to"; additional TO recipients are carried
// in "cc" alongside any explicit CC addresses.
type TransactionRequest struct {
	From          Address           `json:"from"`
	To            string            `json:"to"`
	Cc            []string          `json:"cc,omitempty"`
	Bcc           []string          `json:"bcc,omitempty"`
	Subject       string            `json:"subject"`
	Encode        string            `json:"encode"`
	TextPart      string            `json:"text_part"`
	HTMLPart      string            `json:"html_part,omitempty"`
	CustomHeaders map[string]string `json:"custom_headers,omitempty"`
}

// BulkBeginRequest is the body of POST /deliveries/bulk/begin.
type BulkBeginRequest struct {
	From     Address `json:"from"`
	Subject  string  `json:"subject"`
	Encode   string  `json:"encode"`
	TextPart string  `json:"text_part"`
	HTMLPart string  `json:"html_part,omitempty"`
}

// BulkRecipient is one entry of the bulk to-list.
type BulkRecipient struct {
	Email string `json:"email"`
}

// BulkUpdateRequest is the body of PUT /deliveries/bulk/update/{id}. The
// same endpoint accepts the recipient list and template revisions; each
// step of the sequence sends only its own fields.
type BulkUpdateRequest struct {
	To       []BulkRecipient `json:"to,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	TextPart string          `json:"text_part,omitempty"`
	HTMLPart string          `json:"html_part,omitempty"`
}

// BulkCommitRequest is the body of PATCH /deliveries/bulk/commit/{id} when
// the delivery is deferred to a future time.
type BulkCommitRequest struct {
	ReservationTime string `json:"reservation_time"`
}

// DeliveryStatus is the (partial) response of GET /deliveries/{id}. Fields
// the provider omits are left at their zero values.
type DeliveryStatus struct {
	DeliveryID      json.Number `json:"delivery_id"`
	DeliveryType    string      `json:"delivery_type"`
	Status          string      `json:"status"`
	TotalCount      int         `json:"total_count"`
	SentCount       int         `json:"sent_count"`
	DropCount       int         `json:"drop_count"`
	HardErrorCount  int         `json:"hard_error_count"`
	SoftErrorCount  int         `json:"soft_error_count"`
	DeliveryTime    string      `json:"delivery_time"`
	ReservationTime string      `json:"reservation_time"`
}

// extractDeliveryID pulls the provider-assigned delivery identifier out of a
// response body, tolerating the field name and type variations the provider
// has been observed to use.
func extractDeliveryID(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("parsing provider response: %w", err)
	}

	for _, key := range []string{"delivery_id", "deliveryId", "id"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var num json.Number
		if err := json.Unmarshal(raw, &num); err == nil && num.String() != "" {
			return num.String(), nil
		}
		var str string
		if err := json.Unmarshal(raw, &str); err == nil && str != "" {
			return str, nil
		}
	}
	return "", fmt.Errorf("provider response did not contain a delivery ID")
}

// extractErrorMessage builds a readable, sanitized message from a provider
// error body. The provider reports validation failures either as an
// "error_messages" object keyed by field, or as a flat message field.
func extractErrorMessage(statusCode int, body []byte) string {
	var payload struct {
		ErrorMessages map[string][]string `json:"error_messages"`
		Message       string              `json:"message"`
		Error         string              `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.ErrorMessages) > 0 {
			var parts []string
			for field, msgs := range payload.ErrorMessages {
				for _, msg := range msgs {
					parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
				}
			}
			if len(parts) > 5 {
				parts = parts[:5]
			}
			return fmt.Sprintf("provider rejected request (status %d): %s", statusCode, sanitize(joinParts(parts)))
		}
		if payload.Message != "" {
			return fmt.Sprintf("provider rejected request (status %d): %s", statusCode, sanitize(payload.Message))
		}
		if payload.Error != "" {
			return fmt.Sprintf("provider rejected request (status %d): %s", statusCode, sanitize(payload.Error))
		}
	}
	if len(body) > 0 {
		return fmt.Sprintf("provider rejected request (status %d): %s", statusCode, sanitize(string(body)))
	}
	return fmt.Sprintf("provider rejected request (status %d)", statusCode)
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "; "
		}
		out += p
	}
	return out
}
