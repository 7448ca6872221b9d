package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/logger"
	"github.com/harrison/docpolish/internal/models"
)

// Session modes. In auto-recreate mode a lost session is transparently
// recreated from the remembered document; in fail-fast mode the loss is
// surfaced to the caller immediately.
const (
	ModeAutoRecreate = "auto-recreate"
	ModeFailFast     = "fail-fast"
)

// HandlerFactory builds a vendor handler for a model. Overridable in tests.
type HandlerFactory func(model string, cfg config.ModelConfig) (Handler, error)

// Manager owns the full session lifecycle across all models used in one run:
// at most one active session per model, parallel creation, retry policies,
// and teardown. Queries within a single model are sequential; the session
// map is only written concurrently during parallel initialization, under the
// mutex.
type Manager struct {
	modelsConfig map[string]config.ModelConfig
	cfg          config.SessionConfig
	factory      HandlerFactory
	log          logger.Logger

	// sleep is swappable in tests to avoid real retry delays.
	sleep func(time.Duration)

	mu       sync.Mutex
	sessions map[string]string
	handlers map[string]Handler
	document string
	purpose  string
}

// NewManager creates a session manager for the given model and session
// configuration. log may be nil.
func NewManager(modelsConfig map[string]config.ModelConfig, cfg config.SessionConfig, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Manager{
		modelsConfig: modelsConfig,
		cfg:          cfg,
		factory:      NewHandler,
		log:          log,
		sleep:        time.Sleep,
		sessions:     make(map[string]string),
		handlers:     make(map[string]Handler),
	}
}

// SetHandlerFactory replaces the vendor handler factory. Intended for tests.
func (m *Manager) SetHandlerFactory(factory HandlerFactory) {
	m.factory = factory
}

// InitSession creates a session with full document context for a model and
// remembers document and purpose for later recreation. An empty purpose
// falls back to the configured purpose prompt.
func (m *Manager) InitSession(model, document, purpose string) (string, error) {
	if purpose == "" {
		purpose = m.cfg.PurposePrompt
	}

	m.mu.Lock()
	m.document = document
	m.purpose = purpose
	handler, ok := m.handlers[model]
	m.mu.Unlock()

	if !ok {
		h, err := m.factory(model, m.modelsConfig[model])
		if err != nil {
			return "", NewCreationError(model, err.Error(), nil)
		}
		m.mu.Lock()
		m.handlers[model] = h
		m.mu.Unlock()
		handler = h
	}

	sessionID, err := handler.CreateSession(document, purpose)
	if err != nil {
		m.log.Errorf("failed to create session for %s: %v", model, err)
		return "", err
	}

	m.mu.Lock()
	m.sessions[model] = sessionID
	m.mu.Unlock()

	m.log.Infof("session created for %s: %s", model, sessionID)
	return sessionID, nil
}

// InitSessionsParallel creates sessions for multiple models concurrently, one
// goroutine per model. Models whose creation fails are absent from the result
// map; callers treat absence as "fall back to stateless mode for this model".
func (m *Manager) InitSessionsParallel(modelNames []string, document, purpose string) map[string]string {
	if purpose == "" {
		purpose = m.cfg.PurposePrompt
	}

	m.mu.Lock()
	m.document = document
	m.purpose = purpose
	m.mu.Unlock()

	results := make(map[string]string, len(modelNames))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for _, model := range modelNames {
		wg.Add(1)
		go func(model string) {
			defer wg.Done()
			sessionID, err := m.InitSession(model, document, purpose)
			if err != nil {
				m.log.Errorf("session init failed for %s: %v", model, err)
				return
			}
			resultsMu.Lock()
			results[model] = sessionID
			resultsMu.Unlock()
		}(model)
	}
	wg.Wait()

	return results
}

// QueryInSession queries a model within its existing session, retrying up to
// the configured maximum on generic query failures. A lost session is
// recreated transparently in auto-recreate mode (the same prompt is retried
// against the new session) and surfaced directly in fail-fast mode.
func (m *Manager) QueryInSession(model, prompt string) (*models.Response, error) {
	m.mu.Lock()
	sessionID, ok := m.sessions[model]
	handler := m.handlers[model]
	hasDocument := m.document != ""
	m.mu.Unlock()

	if !ok {
		return nil, NewQueryError(model, "no active session", nil)
	}

	retries := 0
	for retries <= m.cfg.MaxRetries {
		resp, err := handler.QuerySession(sessionID, prompt)
		if err == nil {
			return resp, nil
		}

		switch {
		case IsLostError(err):
			if m.cfg.Mode != ModeAutoRecreate || !hasDocument {
				// fail-fast mode
				return nil, err
			}
			m.log.Warnf("%s session lost, recreating...", model)
			newID, recreateErr := m.RecreateSession(model)
			if recreateErr != nil {
				return nil, NewQueryError(model, "failed to recreate session", err)
			}
			sessionID = newID
			retries++

		case IsQueryError(err):
			retries++
			if retries > m.cfg.MaxRetries {
				m.log.Errorf("%s query failed after %d retries: %v", model, m.cfg.MaxRetries, err)
				return nil, err
			}
			m.log.Warnf("%s query failed, retrying (%d/%d)...", model, retries, m.cfg.MaxRetries)
			m.sleep(m.cfg.RetryDelay)

		default:
			return nil, err
		}
	}

	return nil, NewQueryError(model, fmt.Sprintf("query failed after %d retries", m.cfg.MaxRetries), nil)
}

// RecreateSession drops the model's session entry and re-runs initialization
// with the remembered document and purpose. Fails if no document was ever
// stored.
func (m *Manager) RecreateSession(model string) (string, error) {
	m.mu.Lock()
	document := m.document
	purpose := m.purpose
	delete(m.sessions, model)
	m.mu.Unlock()

	if document == "" {
		return "", NewCreationError(model, "no document stored for session recreation", nil)
	}
	return m.InitSession(model, document, purpose)
}

// HasSession reports whether the model has an active session.
func (m *Manager) HasSession(model string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[model]
	return ok
}

// SessionID returns the model's session identifier, or "".
func (m *Manager) SessionID(model string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[model]
}

// ListSessions returns a copy of the active session map.
func (m *Manager) ListSessions() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.sessions))
	for model, id := range m.sessions {
		out[model] = id
	}
	return out
}

// CleanupSessions clears all session state and the remembered document.
// Most vendor CLIs have no explicit close command, so this only resets
// internal state. Idempotent.
func (m *Manager) CleanupSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log.Infof("cleaning up %d sessions", len(m.sessions))
	m.sessions = make(map[string]string)
	m.document = ""
	m.purpose = ""
}
