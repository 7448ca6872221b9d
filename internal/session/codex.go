package session

import (
	"regexp"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

// codexSessionID is the fallback identifier when Codex doesn't print an
// explicit session id. Codex maintains one session per working directory and
// resumes it with "resume --last".
const codexSessionID = "last"

var codexSessionIDPattern = regexp.MustCompile(`(?i)session\s*id:\s*([a-f0-9-]+)`)

// codexHandler manages sessions for the Codex CLI.
type codexHandler struct {
	runner
}

func newCodexHandler(cfg config.ModelConfig) *codexHandler {
	command := cfg.Command
	if command == "" {
		command = "codex"
	}
	args := cfg.Args
	if args == nil {
		args = []string{"exec", "--skip-git-repo-check"}
	}
	return &codexHandler{runner{
		model:   "codex",
		command: command,
		args:    args,
		timeout: cfg.Timeout,
	}}
}

// CreateSession seeds a Codex session. Codex auto-creates a session on first
// call and may print "session id: <uuid>" on either stream; when it doesn't,
// the "last" sentinel is used.
func (h *codexHandler) CreateSession(document, purpose string) (string, error) {
	result, err := h.run(initPrompt(document, purpose))
	if err != nil {
		return "", NewCreationError(h.model, "invocation failed", err)
	}
	if result.exitCode != 0 {
		return "", NewCreationError(h.model, result.stderr, nil)
	}
	if id := extractCodexSessionID(result.stdout + result.stderr); id != "" {
		return id, nil
	}
	return codexSessionID, nil
}

// extractCodexSessionID pulls a "session id: <uuid>" marker out of combined
// output, or returns "".
func extractCodexSessionID(output string) string {
	if m := codexSessionIDPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}

// QuerySession always resumes the most recent session; Codex cannot address
// older sessions by id.
func (h *codexHandler) QuerySession(sessionID, prompt string) (*models.Response, error) {
	result, err := h.run("resume", "--last", prompt)
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
