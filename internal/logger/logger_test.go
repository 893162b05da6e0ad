package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogFilePathDefaultsToWorkdir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := logFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}

	// TempDir 在部分平台上是符号链接，比较前先展开
	wantDir, err := filepath.EvalSymlinks(filepath.Join(tmpDir, defaultDirName))
	if err != nil {
		t.Fatalf("expected log dir to be created: %v", err)
	}
	gotDir, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("resolve log dir failed: %v", err)
	}
	if gotDir != wantDir {
		t.Fatalf("unexpected log dir: got=%s want=%s", gotDir, wantDir)
	}
}

func TestNewReleaseModeWritesRotatingFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{
		Dir:      tmpDir,
		Filename: "release.log",
	})
	log.Info("release-log-entry")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	if !strings.Contains(string(content), "release-log-entry") {
		t.Fatalf("expected log file to contain message, got=%s", string(content))
	}
	if !strings.Contains(string(content), `"level":"info"`) {
		t.Fatalf("expected JSON encoded entry, got=%s", string(content))
	}
}

func TestNewDebugModeStaysOnConsole(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{
		Dir:      tmpDir,
		Filename: "debug.log",
	})
	log.Info("debug-log-entry")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestPositiveOrFallsBack(t *testing.T) {
	if got := positiveOr(0, 30); got != 30 {
		t.Fatalf("expected fallback for zero, got=%d", got)
	}
	if got := positiveOr(-1, 7); got != 7 {
		t.Fatalf("expected fallback for negative, got=%d", got)
	}
	if got := positiveOr(15, 7); got != 15 {
		t.Fatalf("expected value to win, got=%d", got)
	}
}
