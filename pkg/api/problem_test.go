package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblem_MarshalFlattensExtensions(t *testing.T) {
	p := ValidationError(map[string]string{"name": "name is a required field"})

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "about:blank", body["type"])
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
	assert.Equal(t, map[string]any{"name": "name is a required field"}, body["errors"])
	assert.NotContains(t, body, "instance")
}

func TestProblem_StandardMembersWin(t *testing.T) {
	p := NotFound("no such cache", WithExtension("status", "shadowed"), WithInstance("/v1/caches/x"))

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
	assert.Equal(t, "/v1/caches/x", body["instance"])
}

func TestProblem_LogIsHidden(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	p := Internal(cause)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "refused")
	assert.ErrorIs(t, p, cause)
}
