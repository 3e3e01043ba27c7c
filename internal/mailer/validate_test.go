package mailer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddressList(t *testing.T) {
	addrs, err := NormalizeAddressList([]string{"a@example.com, b@example.com\nc@example.com", " ", "A@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, addrs)
}

func TestNormalizeAddressListRejectsInvalid(t *testing.T) {
	cases := []string{
		"no-at-sign",
		"two@@example.com",
		"@example.com",
		"user@",
		"user@nodot",
	}
	for _, addr := range cases {
		_, err := NormalizeAddressList([]string{addr})
		assert.Error(t, err, "expected %q to be rejected", addr)
		assert.True(t, IsValidationError(err))
	}
}

func TestValidateMessageRequiresBody(t *testing.T) {
	msg := &EmailMessage{
		To:          []string{"a@example.com"},
		Subject:     "hello",
		FromAddress: "sender@example.com",
	}
	err := ValidateMessage(msg)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "body_text or body_html")

	msg.BodyText = "hi"
	assert.NoError(t, ValidateMessage(msg))

	msg.BodyText = ""
	msg.BodyHTML = "<p>hi</p>"
	assert.NoError(t, ValidateMessage(msg))
}

func TestValidateMessageRequiresSender(t *testing.T) {
	msg := &EmailMessage{Subject: "hello", BodyText: "hi"}
	err := ValidateMessage(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from_address")
}

func TestValidateRecipientsCaps(t *testing.T) {
	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "user@example.com"
	}
	err := ValidateRecipients("to", eleven, MaxTransactionalRecipients)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 10")

	assert.NoError(t, ValidateRecipients("to", eleven[:10], MaxTransactionalRecipients))

	err = ValidateRecipients("recipients", nil, MaxBulkRecipients)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")

	fiftyOne := make([]string, 51)
	err = ValidateRecipients("recipients", fiftyOne, MaxBulkRecipients)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 50")
}

func TestValidateAttachmentsBlockedExtensions(t *testing.T) {
	for _, ext := range []string{".exe", ".bat", ".js", ".vbs", ".zip", ".gz", ".dll", ".scr"} {
		atts := []Attachment{{Filename: "payload" + ext, Content: []byte("x")}}
		err := ValidateAttachments(atts)
		require.Error(t, err, "extension %s should be blocked", ext)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), ext)
	}

	// Case-insensitive on the extension.
	err := ValidateAttachments([]Attachment{{Filename: "REPORT.ZIP", Content: []byte("x")}})
	require.Error(t, err)
}

func TestValidateAttachmentsCountCap(t *testing.T) {
	atts := make([]Attachment, 11)
	for i := range atts {
		atts[i] = Attachment{Filename: "f.txt", Content: []byte("x")}
	}
	err := ValidateAttachments(atts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 10 attachments")

	assert.NoError(t, ValidateAttachments(atts[:10]))
}

func TestValidateAttachmentsAggregateSize(t *testing.T) {
	// Each file is small but the sum crosses 1 MiB.
	chunk := bytes.Repeat([]byte("a"), 300*1024)
	atts := []Attachment{
		{Filename: "a.txt", Content: chunk},
		{Filename: "b.txt", Content: chunk},
		{Filename: "c.txt", Content: chunk},
		{Filename: "d.txt", Content: chunk},
	}
	err := ValidateAttachments(atts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	// Exactly at the limit passes.
	exact := []Attachment{{Filename: "a.bin", Content: bytes.Repeat([]byte("a"), MaxTotalAttachmentBytes)}}
	assert.NoError(t, ValidateAttachments(exact))
}

func TestParseScheduleAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Empty means immediate.
	parsed, err := ParseScheduleAt("", now)
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())

	// Future timestamp passes through unchanged.
	parsed, err = ParseScheduleAt("2025-06-01T13:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T13:00:00Z", parsed.Format(time.RFC3339))

	// No zone is interpreted as UTC.
	parsed, err = ParseScheduleAt("2025-06-01T13:00:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), parsed)
}

func TestParseScheduleAtRejectsPastAndGarbage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2025-06-01T11:00:00Z", // past
		"2025-06-01T12:00:00Z", // not strictly future
		"next tuesday",
		"2025-13-45T99:00:00Z",
	} {
		_, err := ParseScheduleAt(raw, now)
		require.Error(t, err, "expected %q to be rejected", raw)
		assert.True(t, IsValidationError(err))
	}
}

func TestAttachmentExt(t *testing.T) {
	assert.Equal(t, ".pdf", Attachment{Filename: "Report.PDF"}.Ext())
	assert.Equal(t, "", Attachment{Filename: "README"}.Ext())
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("user+tag@mail.example.co.jp"))
	assert.False(t, ValidAddress(strings.Repeat("@", 2)+"example.com"))
}
