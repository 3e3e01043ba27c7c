package mailer

import (
	"fmt"
	"strings"
	"time"
)

// Provider-imposed limits on a single send.
const (
	MaxTransactionalRecipients = 10
	MaxBulkRecipients          = 50
	MaxAttachmentCount         = 10
	MaxTotalAttachmentBytes    = 1 << 20 // 1 MiB aggregate across all attachments
)

// blockedExtensions are attachment types the provider rejects.
var blockedExtensions = map[string]bool{
	".exe": true,
	".bat": true,
	".js":  true,
	".vbs": true,
	".zip": true,
	".gz":  true,
	".dll": true,
	".scr": true,
}

// ValidationError reports an input violation detected before any network
// call. It is never retried; the caller corrects the input and re-invokes.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// ValidAddress performs a structural check on an email address: exactly one
// "@", non-empty local part, and a domain containing at least one dot.
func ValidAddress(addr string) bool {
	if strings.Count(addr, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(addr, "@")
	if local == "" || domain == "" {
		return false
	}
	return strings.Contains(domain, ".")
}

// NormalizeAddressList flattens raw recipient entries into a clean address
// list. Entries may contain multiple addresses separated by commas or
// newlines. Blank entries are dropped, surrounding whitespace is trimmed,
// and duplicates are removed case-insensitively, keeping first occurrence.
// Any structurally invalid address is a validation error.
func NormalizeAddressList(raw []string) ([]string, error) {
	var candidates []string
	for _, entry := range raw {
		entry = strings.ReplaceAll(entry, "\n", ",")
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				candidates = append(candidates, part)
			}
		}
	}

	seen := make(map[string]bool, len(candidates))
	deduped := make([]string, 0, len(candidates))
	for _, addr := range candidates {
		if !ValidAddress(addr) {
			return nil, validationErrorf("invalid email address: %s", addr)
		}
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, addr)
	}
	return deduped, nil
}

// ValidateMessage checks the message fields that are independent of the
// delivery mode: subject, body presence, and sender address.
func ValidateMessage(msg *EmailMessage) error {
	if strings.TrimSpace(msg.Subject) == "" {
		return validationErrorf("subject is required")
	}
	if strings.TrimSpace(msg.BodyText) == "" && strings.TrimSpace(msg.BodyHTML) == "" {
		return validationErrorf("either body_text or body_html is required")
	}
	if msg.FromAddress == "" {
		return validationErrorf("from_address is required (set it on the request or configure a default sender)")
	}
	if !ValidAddress(msg.FromAddress) {
		return validationErrorf("invalid from_address: %s", msg.FromAddress)
	}
	return nil
}

// ValidateRecipients enforces the per-bucket recipient cap. Buckets that are
// allowed to be empty (cc, bcc) should only be validated when non-empty.
func ValidateRecipients(bucket string, addrs []string, max int) error {
	if len(addrs) == 0 {
		return validationErrorf("%s: at least one recipient is required", bucket)
	}
	if len(addrs) > max {
		return validationErrorf("%s: at most %d recipients allowed, got %d", bucket, max, len(addrs))
	}
	return nil
}

// ValidateAttachments enforces the attachment count cap, the blocked
// extension set, and the aggregate size cap.
func ValidateAttachments(atts []Attachment) error {
	if len(atts) > MaxAttachmentCount {
		return validationErrorf("at most %d attachments allowed, got %d", MaxAttachmentCount, len(atts))
	}
	total := 0
	for _, att := range atts {
		if ext := att.Ext(); blockedExtensions[ext] {
			return validationErrorf("attachment %s: extension %s is not allowed", att.Filename, ext)
		}
		total += len(att.Content)
	}
	if total > MaxTotalAttachmentBytes {
		return validationErrorf("total attachment size %d bytes exceeds the %d byte limit", total, MaxTotalAttachmentBytes)
	}
	return nil
}

// scheduleLayouts are the accepted ISO-8601 shapes. Timestamps without a
// zone are interpreted as UTC.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseScheduleAt parses an optional ISO-8601 schedule timestamp. An empty
// value means immediate delivery and yields a zero time. A timestamp that
// does not parse, or that is not strictly in the future relative to now,
// is a validation error.
func ParseScheduleAt(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	var parsed time.Time
	var err error
	for _, layout := range scheduleLayouts {
		parsed, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, validationErrorf("schedule_at must be an ISO-8601 timestamp: %s", raw)
	}

	if !parsed.After(now) {
		return time.Time{}, validationErrorf("schedule_at must be in the future: %s", raw)
	}
	return parsed, nil
}
