// Package session manages stateful multi-turn conversations with external AI
// command-line tools. Each supported vendor has a fundamentally different
// session model (explicit UUID, single mutable "latest" session, single
// mutable "last" session); the Handler interface hides that divergence from
// the orchestration layers above it.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

// Handler encapsulates one vendor's CLI invocation grammar for session
// creation and resumption. Implementations spawn one subprocess per call and
// carry no retry logic; retries live in the Manager.
type Handler interface {
	// CreateSession seeds a session with the full document and purpose
	// prompt and returns the vendor's session identifier.
	CreateSession(document, purpose string) (string, error)

	// QuerySession resumes the session and sends only the new prompt;
	// document context is implicit in the remote session state.
	QuerySession(sessionID, prompt string) (*models.Response, error)
}

// NewHandler creates the session handler for a model name. Model names are
// matched case-insensitively. Adding a vendor means adding one implementation
// here, not touching callers.
func NewHandler(model string, cfg config.ModelConfig) (Handler, error) {
	switch strings.ToLower(model) {
	case "claude":
		return newClaudeHandler(cfg), nil
	case "gemini":
		return newGeminiHandler(cfg), nil
	case "codex":
		return newCodexHandler(cfg), nil
	default:
		return nil, fmt.Errorf("no session handler for model: %s", model)
	}
}

// runner executes vendor CLI commands with a per-call timeout. Embedded by
// every handler.
type runner struct {
	model   string
	command string
	args    []string
	timeout time.Duration
}

// runResult carries the separated output streams of a finished subprocess.
type runResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// run executes the vendor CLI with the given extra args. Timeout expiry and a
// missing executable surface as QueryError; a non-zero exit is returned in
// the result for the caller to classify (creation failure vs lost session vs
// generic query failure are vendor-specific decisions).
func (r *runner) run(extraArgs ...string) (*runResult, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string{}, r.args...), extraArgs...)
	cmd := exec.CommandContext(ctx, r.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, NewQueryError(r.model, fmt.Sprintf("command timed out after %s", timeout), context.DeadlineExceeded)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &runResult{
				stdout:   stdout.String(),
				stderr:   stderr.String(),
				exitCode: exitErr.ExitCode(),
			}, nil
		}
		return nil, NewQueryError(r.model, fmt.Sprintf("command %q not runnable", r.command), err)
	}

	return &runResult{stdout: stdout.String(), stderr: stderr.String()}, nil
}

// initPrompt builds the session-seeding prompt shared by all vendors.
func initPrompt(document, purpose string) string {
	return fmt.Sprintf("%s\n\nHere is the full document:\n\n%s", purpose, document)
}

// parseResponse classifies CLI stdout into the response union: JSON object,
// JSON behind a markdown fence, or raw text.
func parseResponse(stdout string) *models.Response {
	stdout = strings.TrimSpace(stdout)

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &fields); err == nil {
		return models.ParsedResponse(fields)
	}

	stripped := stripMarkdownFence(stdout)
	if err := json.Unmarshal([]byte(stripped), &fields); err == nil {
		return models.ParsedResponse(fields)
	}

	return models.RawTextResponse(stdout)
}

// stripMarkdownFence removes a surrounding ```json / ``` fence if present.
func stripMarkdownFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}
	return strings.TrimSpace(text)
}

// isSessionLost applies the vendor stderr heuristics for an expired session.
// All three vendors phrase it as some variant of "session ... not
// found/invalid"; codex additionally says "no session".
func isSessionLost(stderr string) bool {
	s := strings.ToLower(stderr)
	if !strings.Contains(s, "session") {
		return false
	}
	return strings.Contains(s, "not found") ||
		strings.Contains(s, "invalid") ||
		strings.Contains(s, "no session")
}
