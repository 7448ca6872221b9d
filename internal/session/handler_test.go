package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

func TestNewHandlerKnownVendors(t *testing.T) {
	for _, name := range []string{"claude", "gemini", "codex", "Claude", "GEMINI"} {
		h, err := NewHandler(name, config.ModelConfig{})
		require.NoError(t, err, name)
		assert.NotNil(t, h, name)
	}
}

func TestNewHandlerUnknownVendor(t *testing.T) {
	_, err := NewHandler("mistral", config.ModelConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session handler for model: mistral")
}

func TestInitPrompt(t *testing.T) {
	p := initPrompt("# Doc\ncontent", "Answer questions about this document.")
	assert.Equal(t, "Answer questions about this document.\n\nHere is the full document:\n\n# Doc\ncontent", p)
}

func TestParseResponseDirectJSON(t *testing.T) {
	resp := parseResponse(`{"understanding": "install the tool", "steps": ["a", "b"]}`)
	require.Equal(t, models.KindParsed, resp.Kind)
	assert.Equal(t, "install the tool", resp.StringField("understanding"))
}

func TestParseResponseFencedJSON(t *testing.T) {
	resp := parseResponse("```json\n{\"agree\": true}\n```")
	require.Equal(t, models.KindParsed, resp.Kind)
	agree, ok := resp.BoolField("agree")
	assert.True(t, ok)
	assert.True(t, agree)
}

func TestParseResponseRawText(t *testing.T) {
	resp := parseResponse("  The section explains installation.  ")
	require.Equal(t, models.KindRawText, resp.Kind)
	assert.Equal(t, "The section explains installation.", resp.Raw)
}

func TestStripMarkdownFence(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripMarkdownFence(tc.in), tc.in)
	}
}

func TestIsSessionLost(t *testing.T) {
	assert.True(t, isSessionLost("Error: session abc123 not found"))
	assert.True(t, isSessionLost("Invalid session ID"))
	assert.True(t, isSessionLost("codex: no session to resume"))
	assert.False(t, isSessionLost("rate limit exceeded"))
	assert.False(t, isSessionLost("file not found"), "loss requires a session mention")
}

func TestExtractCodexSessionID(t *testing.T) {
	assert.Equal(t, "3f2a1b-88", extractCodexSessionID("starting...\nSession ID: 3f2a1b-88\ndone"))
	assert.Equal(t, "abc", extractCodexSessionID("session id:abc"))
	assert.Equal(t, "", extractCodexSessionID("no marker here"))
}

func TestRunnerMissingExecutable(t *testing.T) {
	r := &runner{model: "claude", command: "definitely-not-a-real-cli-tool"}
	_, err := r.run("hello")
	require.Error(t, err)
	assert.True(t, IsQueryError(err))
}
