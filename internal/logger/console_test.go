package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "warn")

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warn")
	log.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "[WARN] visible warn")
	assert.Contains(t, out, "[ERROR] visible error")
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "")

	log.Debug("hidden")
	log.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "verbose")

	log.Debug("hidden")
	log.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestFormattedOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, "debug")

	log.Infof("testing section %d/%d", 1, 3)

	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] \[INFO\] testing section 1/3\n$`, buf.String())
}

func TestNilWriterDiscards(t *testing.T) {
	log := NewConsoleLogger(nil, "debug")
	log.Info("goes nowhere")
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var _ Logger = NewNoOpLogger()
	var _ Logger = NewConsoleLogger(nil, "info")
}
