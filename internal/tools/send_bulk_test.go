package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mcp-blastengine/internal/mailer"
)

func newBulkTool(client *fakeClient, recorder *fakeRecorder, resolver *fakeResolver) *SendBulkEmailTool {
	if recorder == nil {
		recorder = &fakeRecorder{}
	}
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	return NewSendBulkEmailTool(testConfig(), client, recorder, resolver, testLogger())
}

func TestSendBulkEmail(t *testing.T) {
	client := &fakeClient{deliveryID: "200"}
	recorder := &fakeRecorder{}
	tool := newBulkTool(client, recorder, nil)

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"recipients": "a@example.com, b@example.com, c@example.com",
		"subject":    "Newsletter",
		"body_html":  "<p>News</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.bulkCalls)
	assert.Len(t, client.lastRecipients, 3)
	assert.True(t, client.lastScheduleAt.IsZero())

	dr := result.(*mailer.DeliveryResult)
	assert.Equal(t, "200", dr.DeliveryID)
	assert.Equal(t, 3, dr.RecipientCount)
	assert.False(t, dr.Scheduled)
	assert.Contains(t, dr.Status, "immediate delivery")

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, "bulk", recorder.entries[0].Kind)
	assert.False(t, recorder.entries[0].Scheduled)
}

func TestSendBulkEmailMergesCSVAndInline(t *testing.T) {
	lines := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("csv%d@example.com", i))
	}
	resolver := &fakeResolver{files: map[string]mailer.Attachment{
		"list.csv": {Filename: "list.csv", Content: []byte(strings.Join(lines, "\n"))},
	}}
	client := &fakeClient{deliveryID: "201"}
	tool := newBulkTool(client, nil, resolver)

	// Two inline addresses duplicate CSV rows and must be dropped.
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"recipients":      "csv0@example.com, CSV1@example.com, extra1@example.com, extra2@example.com, extra3@example.com",
		"recipients_file": "list.csv",
		"subject":         "Newsletter",
		"body_text":       "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.bulkCalls)
	assert.Len(t, client.lastRecipients, 33)

	dr := result.(*mailer.DeliveryResult)
	assert.Equal(t, 33, dr.RecipientCount)
}

func TestSendBulkEmailCSVSkippedRowsNote(t *testing.T) {
	csv := "email\nalice@example.com\nbob@example.com\n"
	resolver := &fakeResolver{files: map[string]mailer.Attachment{
		"list.csv": {Filename: "list.csv", Content: []byte(csv)},
	}}
	client := &fakeClient{deliveryID: "202"}
	tool := newBulkTool(client, nil, resolver)

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"recipients_file": "list.csv",
		"subject":         "Newsletter",
		"body_text":       "hello",
	})
	require.NoError(t, err)
	assert.Len(t, client.lastRecipients, 2)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields["note"], "1 row(s)")
	assert.Equal(t, "202", fields["delivery_id"])
}

func TestSendBulkEmailScheduled(t *testing.T) {
	client := &fakeClient{deliveryID: "203"}
	recorder := &fakeRecorder{}
	tool := newBulkTool(client, recorder, nil)

	scheduleAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"recipients":  "a@example.com",
		"subject":     "Launch",
		"body_text":   "soon",
		"schedule_at": scheduleAt.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.True(t, scheduleAt.Equal(client.lastScheduleAt))

	dr := result.(*mailer.DeliveryResult)
	assert.True(t, dr.Scheduled)
	assert.Equal(t, scheduleAt.Format(time.RFC3339), dr.ScheduleAt)
	assert.Contains(t, dr.Status, "scheduled for")

	require.Len(t, recorder.entries, 1)
	assert.True(t, recorder.entries[0].Scheduled)
	assert.Equal(t, scheduleAt.Format(time.RFC3339), recorder.entries[0].ScheduleAt)
}

func TestSendBulkEmailValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr string
	}{
		{
			name: "missing bodies",
			params: map[string]interface{}{
				"recipients": "a@example.com",
				"subject":    "Hi",
			},
			wantErr: "body",
		},
		{
			name: "no recipients",
			params: map[string]interface{}{
				"subject":   "Hi",
				"body_text": "body",
			},
			wantErr: "recipients",
		},
		{
			name: "too many recipients",
			params: map[string]interface{}{
				"recipients": manyAddresses(51),
				"subject":    "Hi",
				"body_text":  "body",
			},
			wantErr: "at most 50",
		},
		{
			name: "schedule in the past",
			params: map[string]interface{}{
				"recipients":  "a@example.com",
				"subject":     "Hi",
				"body_text":   "body",
				"schedule_at": "2020-01-01T00:00:00Z",
			},
			wantErr: "future",
		},
		{
			name: "unparseable schedule",
			params: map[string]interface{}{
				"recipients":  "a@example.com",
				"subject":     "Hi",
				"body_text":   "body",
				"schedule_at": "next tuesday",
			},
			wantErr: "schedule_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{deliveryID: "1"}
			recorder := &fakeRecorder{}
			tool := newBulkTool(client, recorder, nil)

			_, err := tool.Execute(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, mailer.IsValidationError(err), "expected validation error, got %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)

			assert.Equal(t, 0, client.bulkCalls)
			assert.Empty(t, recorder.entries)
		})
	}
}

func TestSendBulkEmailProviderFailure(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("bulk begin failed")}
	recorder := &fakeRecorder{}
	tool := newBulkTool(client, recorder, nil)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"recipients": "a@example.com",
		"subject":    "Hi",
		"body_text":  "body",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send bulk email")
	assert.Empty(t, recorder.entries)
}
