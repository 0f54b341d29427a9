package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdErrLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LogInfo)
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("failed %s", "here")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "INFO: shown 2") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "ERROR: failed here") {
		t.Fatalf("missing error line: %q", out)
	}

	buf.Reset()
	l.SetLogLevel(LogDebug)
	l.Debugf("now visible")
	if !strings.Contains(buf.String(), "DEBUG: now visible") {
		t.Fatalf("debug line missing after SetLogLevel: %q", buf.String())
	}
}

func TestNewVerbose(t *testing.T) {
	if New(true).GetLogLevel() != LogDebug {
		t.Fatalf("verbose logger should be at debug level")
	}
	if New(false).GetLogLevel() != LogInfo {
		t.Fatalf("quiet logger should be at info level")
	}
}
