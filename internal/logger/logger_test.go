package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersAreNoopsBeforeInit(t *testing.T) {
	L, S = nil, nil
	Debug("nothing")
	Info("nothing")
	Warn("nothing")
	Error("nothing")
}

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vtext.log")
	t.Setenv("VTEXT_LOG_FILE", path)
	if err := Init(true); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	Debug("toggle", "key", "bold")
	Close()
	L, S = nil, nil

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "toggle") || !strings.Contains(string(data), "bold") {
		t.Fatalf("log = %q, want toggle entry", data)
	}
}

func TestLogPathFromConfigHome(t *testing.T) {
	t.Setenv("VTEXT_LOG_FILE", "")
	t.Setenv("VTEXT_CONFIG_HOME", "/tmp/vtext-home")
	got, err := logPath()
	if err != nil {
		t.Fatalf("logPath error: %v", err)
	}
	if got != "/tmp/vtext-home/vtext.log" {
		t.Fatalf("path = %q, want %q", got, "/tmp/vtext-home/vtext.log")
	}
}

func TestUseObserver(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	Use(zap.New(core))
	defer func() { L, S = nil, nil }()

	Info("dropped")
	Warn("kept", "n", 1)
	if logs.Len() != 1 {
		t.Fatalf("entries = %d, want 1", logs.Len())
	}
	if msg := logs.All()[0].Message; msg != "kept" {
		t.Fatalf("message = %q, want %q", msg, "kept")
	}
}

func TestLogPathFromXDG(t *testing.T) {
	t.Setenv("VTEXT_LOG_FILE", "")
	t.Setenv("VTEXT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := logPath()
	if err != nil {
		t.Fatalf("logPath error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "vtext", "vtext.log"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}
