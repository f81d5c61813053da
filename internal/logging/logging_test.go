package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("IST", 5*3600+1800)
	log := New(&buf, "debug", loc)

	log.WithField("component", "test").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test", entry["component"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 5*3600+1800, offset)
}

func TestNew_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud", nil)
	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	log.Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
