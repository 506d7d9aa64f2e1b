package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for _, c := range []struct {
		name  string
		level zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	} {
		if l := parseLevel(c.name); l != c.level {
			t.Errorf("%q: expected %s, got %s", c.name, c.level, l)
		}
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "pmxfile.log")
	if err := InitWithFileConfig("warn", DefaultFileConfig(logFile), false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() { Log = zap.NewNop() }()

	Log.Debug("read section", zap.String("section", "bones"))
	Log.Warn("decode warning", zap.String("section", "faces"))
	Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "read section") {
		t.Error("debug entry written at warn level")
	}
	if !strings.Contains(s, `"msg":"decode warning"`) || !strings.Contains(s, `"section":"faces"`) {
		t.Errorf("expected warning entry in log file, got %q", s)
	}
}

func TestNoOutput(t *testing.T) {
	if err := InitWithFileConfig("debug", FileConfig{}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() { Log = zap.NewNop() }()
	if Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("logger without outputs reports enabled level")
	}
}
