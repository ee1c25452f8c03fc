package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure_Levels(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{" error ", logrus.ErrorLevel},
		{"warn", logrus.WarnLevel},
		{"", logrus.WarnLevel},
		{"nonsense", logrus.WarnLevel},
	}

	for _, tt := range tests {
		Configure(tt.in, "text")
		if Logger.GetLevel() != tt.want {
			t.Errorf("Configure(%q): expected level %v, got %v", tt.in, tt.want, Logger.GetLevel())
		}
	}
	Configure("warn", "text")
}

func TestConfigure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure("info", "json")
	defer func() {
		Configure("warn", "text")
	}()

	WithField("file_id", "abc").Info("analyzed")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["file_id"] != "abc" {
		t.Errorf("expected file_id field, got %v", entry["file_id"])
	}
	if entry["msg"] != "analyzed" {
		t.Errorf("expected msg 'analyzed', got %v", entry["msg"])
	}
}

func TestDebugSuppressedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure("warn", "text")

	Logger.Debug("hidden")
	WithFields(logrus.Fields{"k": "v"}).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be suppressed at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %q", out)
	}
}
