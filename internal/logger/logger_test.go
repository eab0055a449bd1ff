package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", true)
	logger.Debug("test debug message")

	if !strings.Contains(buf.String(), "test debug message") {
		t.Errorf("Expected log output to contain 'test debug message', but it didn't")
	}
}

func TestNew_Info_With_Debug_False(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", false)
	logger.Debug("test debug message")
	logger.Info("test info message")

	if strings.Contains(buf.String(), "test debug message") {
		t.Errorf("Expected log output to not contain 'test debug message', but it did")
	}
	if !strings.Contains(buf.String(), "test info message") {
		t.Errorf("Expected log output to contain 'test info message', but it didn't")
	}
}

func TestNew_Formats(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer
	NewWithWriter(&jsonBuf, "json", false).Info("hello", "component", "keystore")
	NewWithWriter(&textBuf, "text", false).Info("hello", "component", "keystore")

	var entry map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", jsonBuf.String(), err)
	}
	if entry["component"] != "keystore" {
		t.Errorf("Expected component attribute, got %v", entry["component"])
	}
	if !strings.Contains(textBuf.String(), "component=keystore") {
		t.Errorf("Expected text output, got %q", textBuf.String())
	}
}

func TestKeySuffix(t *testing.T) {
	if got := KeySuffix("sk-abcdef1234"); got != "1234" {
		t.Errorf("Expected 1234, got %s", got)
	}
	if got := KeySuffix("abc"); got != "abc" {
		t.Errorf("Expected abc, got %s", got)
	}
}
