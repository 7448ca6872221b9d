package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/detector"
	"github.com/harrison/docpolish/internal/filelock"
	"github.com/harrison/docpolish/internal/history"
	"github.com/harrison/docpolish/internal/logger"
	"github.com/harrison/docpolish/internal/model"
	"github.com/harrison/docpolish/internal/report"
	"github.com/harrison/docpolish/internal/session"
)

// Runner executes the full polish pipeline for one document.
type Runner struct {
	cfg *config.Config
	log logger.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg *config.Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{cfg: cfg, log: log}
}

// RunResult summarizes a completed pipeline run.
type RunResult struct {
	RunID            string
	Workspace        string
	ReportPath       string
	PolishedPath     string
	SectionsTested   int
	AmbiguitiesFound int
	SeverityCounts   map[string]int
}

// Run executes extract, session init, testing, detection, and reporting for
// documentPath. modelNames narrows the models used; empty means every
// enabled model. The workspace is locked for the duration so concurrent
// runs against the same workspace do not interleave artifacts.
func (r *Runner) Run(ctx context.Context, documentPath string, modelNames []string) (*RunResult, error) {
	started := time.Now()
	runID := uuid.NewString()

	workspace := filepath.Join(r.cfg.Workspace, runID)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", workspace, err)
	}

	lock := filelock.New(filepath.Join(r.cfg.Workspace, ".lock"))
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	names := r.cfg.EnabledModels(modelNames)
	if len(names) < 2 {
		return nil, fmt.Errorf("need at least 2 enabled models, have %d", len(names))
	}

	r.log.Infof("run %s: polishing %s with models %s", runID, documentPath, strings.Join(names, ", "))

	// Step 1: extract sections.
	extraction, err := ExtractStep(documentPath)
	if err != nil {
		return nil, err
	}
	if err := extraction.Save(filepath.Join(workspace, SectionsFile)); err != nil {
		return nil, err
	}
	r.log.Infof("extracted %d testable sections", len(extraction.Sections))
	if len(extraction.Sections) == 0 {
		return nil, fmt.Errorf("no testable sections found in %s", documentPath)
	}

	// Step 2: initialize sessions.
	sessions := session.NewManager(r.cfg.Models, r.cfg.Sessions, r.log)
	defer sessions.CleanupSessions()

	meta := SessionInitStep(sessions, r.cfg.Sessions, names, extraction.DocumentContent)
	if err := meta.Save(filepath.Join(workspace, SessionMetadataFile)); err != nil {
		return nil, err
	}
	if len(meta.FailedModels) > 0 {
		r.log.Warnf("session init failed for: %s", strings.Join(meta.FailedModels, ", "))
	}

	manager := model.NewManager(r.cfg.Models, sessions, r.log)

	// Step 3: test sections.
	testing := NewTestingStep(manager, r.log)
	testResult, err := testing.Run(extraction.Sections, names, meta.Enabled)
	if err != nil {
		return nil, err
	}
	testResult.DocumentPath = extraction.DocumentPath
	if err := testResult.Save(filepath.Join(workspace, TestResultsFile)); err != nil {
		return nil, err
	}

	// Step 4: detect ambiguities.
	sink, err := detector.NewFileTranscriptSink(filepath.Join(workspace, TranscriptFile))
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	detection := NewDetectionStep(r.cfg.Detection, manager, sink, r.log)
	output, err := detection.Run(testResult)
	if err != nil {
		return nil, err
	}
	if err := output.Save(filepath.Join(workspace, AmbiguitiesFile)); err != nil {
		return nil, err
	}
	r.log.Infof("found %d ambiguities", len(output.Ambiguities))

	// Step 5: report and polished document.
	reportContent := report.Generate(report.Params{
		RunID:        runID,
		DocumentPath: extraction.DocumentPath,
		JudgeModel:   output.JudgeModel,
		ModelNames:   names,
	}, len(testResult.Sections), output.Ambiguities)

	reportPath := filepath.Join(workspace, ReportFile)
	if err := filelock.AtomicWrite(reportPath, []byte(reportContent)); err != nil {
		return nil, err
	}

	polishedPath := ""
	if len(output.Ambiguities) > 0 {
		polished := report.Polished(extraction.DocumentContent, output.Ambiguities)
		stem := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath))
		polishedPath = filepath.Join(workspace, stem+"_polished.md")
		if err := filelock.AtomicWrite(polishedPath, []byte(polished)); err != nil {
			return nil, err
		}
	}

	r.recordHistory(ctx, runID, extraction.DocumentPath, names, testResult, output, time.Since(started))

	return &RunResult{
		RunID:            runID,
		Workspace:        workspace,
		ReportPath:       reportPath,
		PolishedPath:     polishedPath,
		SectionsTested:   len(testResult.Sections),
		AmbiguitiesFound: len(output.Ambiguities),
		SeverityCounts:   output.SeverityCounts,
	}, nil
}

// recordHistory persists the run summary. History failures are logged and
// swallowed; the run itself already succeeded.
func (r *Runner) recordHistory(ctx context.Context, runID, documentPath string, names []string, tr *TestResult, out *DetectionOutput, elapsed time.Duration) {
	if !r.cfg.History.Enabled {
		return
	}
	store, err := history.NewStore(r.cfg.History.DBPath)
	if err != nil {
		r.log.Warnf("history disabled for this run: %v", err)
		return
	}
	defer store.Close()

	err = store.RecordRun(ctx, &history.Run{
		RunID:            runID,
		DocumentPath:     documentPath,
		Strategy:         out.Strategy,
		JudgeModel:       out.JudgeModel,
		Models:           names,
		SectionsTested:   len(tr.Sections),
		AmbiguitiesFound: len(out.Ambiguities),
		SeverityCounts:   out.SeverityCounts,
		DurationSecs:     int64(elapsed.Seconds()),
	})
	if err != nil {
		r.log.Warnf("failed to record run history: %v", err)
	}
}
