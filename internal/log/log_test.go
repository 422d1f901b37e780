package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelInfo)
	Debug("hidden")
	Info("shown", "k", 1)
	Error("failed", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] shown k=1") {
		t.Errorf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestScopedLogger(t *testing.T) {
	buf := capture(t, LevelDebug)
	l := With("picker_id", "a").With("unit", "d")
	l.Debug("advance", "tries", 2, "dangling")

	if got, want := buf.String(), "[DEBUG] advance picker_id=a unit=d tries=2\n"; !strings.HasSuffix(got, want) {
		t.Errorf("got %q, want suffix %q", got, want)
	}

	var nilLogger *Logger
	buf.Reset()
	nilLogger.Info("plain", "k", "v")
	if !strings.HasSuffix(buf.String(), "[INFO] plain k=v\n") {
		t.Errorf("nil logger: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{" Error ", LevelError, false},
		{"", LevelInfo, false},
		{"trace", LevelInfo, true},
	} {
		got, err := ParseLevel(tc.in)
		if got != tc.want || (err != nil) != tc.err {
			t.Errorf("ParseLevel(%q): got %v, %v", tc.in, got, err)
		}
	}
}
