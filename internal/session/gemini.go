package session

import (
	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

// geminiSessionID is the sentinel used for Gemini sessions. Gemini
// auto-creates a session per invocation and has no session-id surface in its
// output; "latest" always references the most recently created session.
const geminiSessionID = "latest"

// geminiHandler manages sessions for the Gemini CLI.
type geminiHandler struct {
	runner
}

func newGeminiHandler(cfg config.ModelConfig) *geminiHandler {
	command := cfg.Command
	if command == "" {
		command = "gemini"
	}
	return &geminiHandler{runner{
		model:   "gemini",
		command: command,
		args:    cfg.Args,
		timeout: cfg.Timeout,
	}}
}

func (h *geminiHandler) CreateSession(document, purpose string) (string, error) {
	result, err := h.run(initPrompt(document, purpose))
	if err != nil {
		return "", NewCreationError(h.model, "invocation failed", err)
	}
	if result.exitCode != 0 {
		return "", NewCreationError(h.model, result.stderr, nil)
	}
	return geminiSessionID, nil
}

// QuerySession always resumes via "-r latest" regardless of the recorded
// identifier; Gemini keeps exactly one mutable session.
func (h *geminiHandler) QuerySession(sessionID, prompt string) (*models.Response, error) {
	result, err := h.run("-r", geminiSessionID, prompt)
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
