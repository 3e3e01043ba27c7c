package blastengine

import (
	"fmt"
	"regexp"
)

// APIError is an error response from the Blastengine REST API. Status codes
// in the 4xx range are terminal business-rule rejections; retryable statuses
// are handled inside the client before an APIError is surfaced.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return e.Message
}

// Temporary reports whether the failure was transient (the retry budget was
// exhausted before this error surfaced).
func (e *APIError) Temporary() bool {
	return e.StatusCode == 0 || isRetryableStatus(e.StatusCode)
}

// BulkStep identifies a step of the four-call bulk delivery sequence.
type BulkStep int

const (
	BulkStepBegin BulkStep = iota
	BulkStepRecipients
	BulkStepTemplate
	BulkStepCommit
)

func (s BulkStep) String() string {
	switch s {
	case BulkStepBegin:
		return "begin"
	case BulkStepRecipients:
		return "add-recipients"
	case BulkStepTemplate:
		return "update-template"
	case BulkStepCommit:
		return "commit"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// BulkStepError reports which step of the bulk sequence failed. No cleanup
// of the partially created job is attempted; the provider garbage-collects
// abandoned deliveries.
type BulkStepError struct {
	Step       BulkStep
	DeliveryID string
	Err        error
}

func (e *BulkStepError) Error() string {
	if e.DeliveryID == "" {
		return fmt.Sprintf("bulk delivery step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("bulk delivery step %q failed (delivery ID %s): %v", e.Step, e.DeliveryID, e.Err)
}

func (e *BulkStepError) Unwrap() error {
	return e.Err
}

const maxLoggedBodyLength = 200

var (
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9+/=]{20,}`)
	keyPattern    = regexp.MustCompile(`[A-Za-z0-9+/=]{32,}`)
)

// sanitize masks credential-shaped substrings (bearer tokens, long key-like
// strings) and truncates the result so raw provider bodies never leak
// secrets into logs or user-facing messages.
func sanitize(text string) string {
	if text == "" {
		return text
	}
	text = bearerPattern.ReplaceAllString(text, "Bearer ***")
	text = keyPattern.ReplaceAllString(text, "***")
	if len(text) > maxLoggedBodyLength {
		text = text[:maxLoggedBodyLength] + "... (truncated)"
	}
	return text
}
