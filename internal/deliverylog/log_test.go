package deliverylog

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "deliveries.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRecordAndRecent(t *testing.T) {
	log := openTestLog(t)

	require.NoError(t, log.Record(&Entry{
		DeliveryID:     "100",
		Kind:           "transactional",
		RecipientCount: 2,
	}))
	require.NoError(t, log.Record(&Entry{
		DeliveryID:      "101",
		Kind:            "bulk",
		RecipientCount:  35,
		AttachmentCount: 1,
		Scheduled:       true,
		ScheduleAt:      "2030-01-01T10:00:00Z",
	}))

	entries, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "101", entries[0].DeliveryID)
	assert.Equal(t, "bulk", entries[0].Kind)
	assert.Equal(t, 35, entries[0].RecipientCount)
	assert.True(t, entries[0].Scheduled)
	assert.Equal(t, "2030-01-01T10:00:00Z", entries[0].ScheduleAt)
	assert.False(t, entries[0].CreatedAt.IsZero())

	assert.Equal(t, "100", entries[1].DeliveryID)
	assert.False(t, entries[1].Scheduled)
}

func TestRecentLimit(t *testing.T) {
	log := openTestLog(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(&Entry{DeliveryID: "x", Kind: "transactional", RecipientCount: 1}))
	}

	entries, err := log.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Non-positive limit falls back to the default.
	entries, err = log.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRecentEmpty(t *testing.T) {
	log := openTestLog(t)
	entries, err := log.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
