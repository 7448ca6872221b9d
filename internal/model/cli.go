// Package model presents one uniform query surface over the configured AI
// models, regardless of whether a model is queried statelessly or within a
// document-context session.
package model

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

// CLIModel invokes one external AI tool statelessly: one subprocess per
// query, prompt on stdin, no session context.
type CLIModel struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewCLIModel builds a CLIModel from a model's configuration.
func NewCLIModel(name string, cfg config.ModelConfig) *CLIModel {
	command := cfg.Command
	if command == "" {
		command = name
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CLIModel{Command: command, Args: cfg.Args, Timeout: timeout}
}

// Query executes the CLI with the prompt on stdin and classifies the output.
// All failures (non-zero exit, timeout, missing executable) are absorbed into
// an error-kind response rather than returned as Go errors: a single model's
// transport failure is never fatal to the run.
func (m *CLIModel) Query(prompt string) *models.Response {
	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.Command, m.Args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return models.ErrorResponse(fmt.Sprintf("timeout after %s", m.Timeout), stderr.String())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return models.ErrorResponse(
				fmt.Sprintf("exit status %d", exitErr.ExitCode()),
				stderr.String(),
			)
		}
		return models.ErrorResponse(fmt.Sprintf("command %q not found or not runnable: %v", m.Command, err), "")
	}

	return classifyOutput(stdout.String())
}

// classifyOutput decides the response kind exactly once: JSON object, JSON
// behind a markdown fence, or raw text.
func classifyOutput(stdout string) *models.Response {
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
