package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Output: &buf})
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn %s", "here")
	l.Errorf("error %d", 2)

	out := buf.String()
	if strings.Contains(out, "debug") || strings.Contains(out, "info") {
		t.Errorf("messages below WARN were logged:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn here") {
		t.Errorf("missing WARN line:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] error 2") {
		t.Errorf("missing ERROR line:\n%s", out)
	}
}

func TestFatalExits(t *testing.T) {
	l, buf := newTestLogger(INFO)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("giving up on %s", "input.wav")

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "[FATAL] giving up on input.wav") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWithPrefix(t *testing.T) {
	l, buf := newTestLogger(DEBUG)
	child := l.WithPrefix("[run 42]")

	child.Info("started")
	l.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], "[INFO] [run 42] started") {
		t.Errorf("unexpected prefixed line %q", lines[0])
	}
	if strings.Contains(lines[1], "[run 42]") {
		t.Errorf("prefix leaked into parent: %q", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DEBUG, true},
		{"INFO", INFO, true},
		{"warning", WARN, true},
		{" Error ", ERROR, true},
		{"fatal", FATAL, true},
		{"verbose", INFO, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestColorize(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Output: &buf, Colorize: true})
	l.Error("boom")

	if !strings.Contains(buf.String(), colorRed+"[ERROR]"+colorReset) {
		t.Errorf("expected colored level, got %q", buf.String())
	}
}
