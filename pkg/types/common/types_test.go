package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_JSON(t *testing.T) {
	ts := Timestamp(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, time.Time(ts).Equal(time.Time(back)))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse("ok", "req-1")
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Data)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Nil(t, resp.Error)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("CGS_001", "grammar error", "fragment=meta position=3", "req-2")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CGS_001", resp.Error.Code)
	assert.Equal(t, "fragment=meta position=3", resp.Error.Detail)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"data"`)
	assert.Contains(t, string(data), `"request_id":"req-2"`)
}

func TestAPIResponse_JSONRoundTrip(t *testing.T) {
	resp := NewSuccessResponse(map[string]int{"atoms": 3}, "r")
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var back APIResponse[map[string]int]
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 3, back.Data["atoms"])
	assert.True(t, back.Success)
}
