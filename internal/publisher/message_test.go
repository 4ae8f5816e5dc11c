package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallabag_importer/internal/domain"
)

func TestNewRecordMessage(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, 6, 1, 14, 0, 0, 0, loc)
	record := &domain.Record{
		ID:     42,
		Type:   "post",
		Status: "draft",
		Title:  "Hello",
		Meta:   map[string]string{domain.MetaSourceURI: "https://a.example/p"},
	}
	entry := domain.Entry{ID: 7, URL: "https://a.example/p"}

	msg := NewRecordMessage(record, entry, now)

	assert.Equal(t, ActionCreate, msg.Action)
	assert.Equal(t, int64(7), msg.EntryID)
	assert.Equal(t, "https://a.example/p", msg.SourceURL)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.True(t, msg.Timestamp.Equal(now))

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "create", raw["action"])
	assert.Equal(t, float64(7), raw["entry_id"])

	rec, ok := raw["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), rec["id"])
	assert.NotContains(t, rec, "format")
}
