package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{})
	log.Info().Str("hash", "show=daily").Msg("rendered")
	log.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rendered", entry["message"])
	assert.Equal(t, "show=daily", entry["hash"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Verbose: true})
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
