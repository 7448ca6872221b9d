package session

import (
	"encoding/json"
	"fmt"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

// claudeHandler manages sessions for the Claude CLI. Claude issues an
// explicit session UUID in its JSON output and resumes via "-r <id>".
type claudeHandler struct {
	runner
}

func newClaudeHandler(cfg config.ModelConfig) *claudeHandler {
	command := cfg.Command
	if command == "" {
		command = "claude"
	}
	args := cfg.Args
	if args == nil {
		args = []string{"-p"}
	}
	return &claudeHandler{runner{
		model:   "claude",
		command: command,
		args:    args,
		timeout: cfg.Timeout,
	}}
}

// CreateSession seeds a Claude session. "--output-format json" makes the CLI
// print a JSON envelope containing the session_id.
func (h *claudeHandler) CreateSession(document, purpose string) (string, error) {
	result, err := h.run("--output-format", "json", initPrompt(document, purpose))
	if err != nil {
		return "", NewCreationError(h.model, "invocation failed", err)
	}
	if result.exitCode != 0 {
		return "", NewCreationError(h.model, result.stderr, nil)
	}

	var envelope struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(result.stdout), &envelope); err != nil {
		return "", NewCreationError(h.model, fmt.Sprintf("failed to parse response: %s", truncate(result.stdout, 200)), nil)
	}
	if envelope.SessionID == "" {
		return "", NewCreationError(h.model, "no session_id in response", nil)
	}
	return envelope.SessionID, nil
}

// QuerySession resumes the session with "-r <id>" and sends the new prompt.
func (h *claudeHandler) QuerySession(sessionID, prompt string) (*models.Response, error) {
	result, err := h.run("-r", sessionID, prompt)
	if err != nil {
		return nil, err
	}
	if result.exitCode != 0 {
		if isSessionLost(result.stderr) {
			return nil, NewLostError(h.model, sessionID, result.stderr)
		}
		return nil, NewQueryError(h.model, result.stderr, nil)
	}
	return parseResponse(result.stdout), nil
}

// truncate caps s at n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
