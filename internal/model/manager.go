package model

import (
	"fmt"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/logger"
	"github.com/harrison/docpolish/internal/models"
)

// SessionQuerier is the slice of the session manager the model manager
// depends on.
type SessionQuerier interface {
	HasSession(model string) bool
	QueryInSession(model, prompt string) (*models.Response, error)
}

// Manager routes queries to either a session-based path or a stateless
// one-shot CLI invocation, uniformly for all configured models. Sessions are
// a quality optimization, not a correctness requirement: any session-layer
// failure falls back to the stateless path.
type Manager struct {
	clis     map[string]*CLIModel
	sessions SessionQuerier
	log      logger.Logger
}

// NewManager loads all enabled models from configuration. sessions may be
// nil, in which case every query uses the stateless path. log may be nil.
func NewManager(modelsConfig map[string]config.ModelConfig, sessions SessionQuerier, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	clis := make(map[string]*CLIModel, len(modelsConfig))
	for name, cfg := range modelsConfig {
		if !cfg.Enabled {
			continue
		}
		clis[name] = NewCLIModel(name, cfg)
		log.Debugf("loaded model: %s", name)
	}
	return &Manager{clis: clis, sessions: sessions, log: log}
}

// SetSessions attaches a session querier after construction.
func (m *Manager) SetSessions(sessions SessionQuerier) {
	m.sessions = sessions
}

// Available lists the loaded model names.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.clis))
	for name := range m.clis {
		names = append(names, name)
	}
	return names
}

// Has reports whether the model is loaded.
func (m *Manager) Has(model string) bool {
	_, ok := m.clis[model]
	return ok
}

// Query sends a prompt to one model. When useSession is set and a live
// session exists, the session path is tried first; its failure degrades to a
// stateless invocation instead of propagating. An unconfigured model yields
// an error-kind response rather than a Go error so partial results stay
// usable.
func (m *Manager) Query(model, prompt string, useSession bool) *models.Response {
	cli, ok := m.clis[model]
	if !ok {
		return models.ErrorResponse(fmt.Sprintf("model %q not available", model), "")
	}

	if useSession && m.sessions != nil && m.sessions.HasSession(model) {
		resp, err := m.sessions.QueryInSession(model, prompt)
		if err == nil {
			return resp
		}
		m.log.Warnf("session query failed for %s, falling back to stateless: %v", model, err)
	}

	return cli.Query(prompt)
}

// QueryAll queries every requested model with the identical prompt, in the
// given order, and returns a per-model response map.
func (m *Manager) QueryAll(prompt string, modelNames []string, useSession bool) map[string]*models.Response {
	results := make(map[string]*models.Response, len(modelNames))
	for _, name := range modelNames {
		m.log.Infof("querying %s...", name)
		results[name] = m.Query(name, prompt, useSession)
	}
	return results
}
