package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// failingWriter is a helper for testing error propagation.
type failingWriter struct{}

func (fw *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func TestTUIMode(t *testing.T) {
	if err := Init(true, "DEBUG", "text", FileOptions{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Initial log")

	var tuiPane bytes.Buffer
	if err := SetOutput(&tuiPane); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	if !strings.Contains(tuiPane.String(), "Initial log") {
		t.Errorf("Expected initial log to be flushed to TUI, but it wasn't. Got: %s", tuiPane.String())
	}

	slog.Info("Live log")

	if !strings.Contains(tuiPane.String(), "Live log") {
		t.Errorf("Expected live log to be written to TUI, but it wasn't. Got: %s", tuiPane.String())
	}

	BufferOutput()

	slog.Info("Buffered log")

	if strings.Contains(tuiPane.String(), "Buffered log") {
		t.Errorf("Expected log to be buffered, but it was written to TUI. Got: %s", tuiPane.String())
	}

	slog.Debug("Debug log")
	if err := SetOutput(&tuiPane); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}
	if !strings.Contains(tuiPane.String(), "Debug log") {
		t.Errorf("Expected DEBUG records at level DEBUG. Got: %s", tuiPane.String())
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestRotatingFileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "yactatt.log")

	if err := Init(false, "INFO", "json", FileOptions{Path: logFile, MaxSizeMB: 1, MaxBackups: 1}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	SetOutput(&bytes.Buffer{})

	slog.Info("Hardware log", "key", "value")
	slog.Debug("Not at INFO")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !strings.Contains(string(content), `"msg":"Hardware log"`) || !strings.Contains(string(content), `"key":"value"`) {
		t.Errorf("Expected log to be written to file in JSON format, but it wasn't. Got: %s", string(content))
	}
	if strings.Contains(string(content), "Not at INFO") {
		t.Errorf("DEBUG record should have been filtered. Got: %s", string(content))
	}
}

func TestInit_UnwritableFile(t *testing.T) {
	err := Init(false, "INFO", "text", FileOptions{Path: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	if err == nil {
		t.Fatal("expected an error for a log file in a missing directory")
	}
}

func TestStderrFallback(t *testing.T) {
	if err := Init(true, "DEBUG", "text", FileOptions{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Shutdown log")

	// Capture stderr
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var wg sync.WaitGroup
	wg.Add(1)
	var capturedOutput string
	go func() {
		defer wg.Done()
		buf := make([]byte, 1024)
		n, _ := r.Read(buf)
		capturedOutput = string(buf[:n])
	}()

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w.Close()
	wg.Wait()
	os.Stderr = oldStderr

	if !strings.Contains(capturedOutput, "Shutdown log") {
		t.Errorf("Expected shutdown log to be written to stderr, but it wasn't. Got: %s", capturedOutput)
	}
}

func TestErrorPropagation(t *testing.T) {
	if err := Init(false, "INFO", "text", FileOptions{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := SetOutput(&failingWriter{}); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	n, err := writer.Write([]byte("line\n"))
	if err == nil {
		t.Error("Expected the target's error to be returned")
	}
	if n != 5 {
		t.Errorf("Expected the full length to be reported, got %d", n)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
