package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newBufferedConsole(buf *bytes.Buffer, level LogLevel) Logger {
	return NewConsoleLogger(ConsoleLoggerConfig{
		Writer:           buf,
		Level:            level,
		ColorEnabled:     false,
		TimestampEnabled: false,
	})
}

func TestMultiLogger_FansOutToAllSinks(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	multi := NewMultiLogger(
		newBufferedConsole(&buf1, INFO),
		newBufferedConsole(&buf2, INFO),
	)

	multi.Info("sync run finished", F("modpack", "MyPack"), F("applied", 3))

	if buf1.Len() == 0 {
		t.Error("first sink received nothing")
	}
	if buf2.Len() == 0 {
		t.Error("second sink received nothing")
	}
	if buf1.String() != buf2.String() {
		t.Errorf("sinks diverged:\n%s\n%s", buf1.String(), buf2.String())
	}
}

func TestMultiLogger_AllLevels(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(newBufferedConsole(&buf, DEBUG))

	multi.Debug("diff computed")
	multi.Info("scan complete")
	multi.Warn("source file unreadable")
	multi.Error("target root inaccessible")

	output := buf.String()
	for _, msg := range []string{"diff computed", "scan complete", "source file unreadable", "target root inaccessible"} {
		if !strings.Contains(output, msg) {
			t.Errorf("output missing %q:\n%s", msg, output)
		}
	}
}

func TestMultiLogger_WithTraceID(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(newBufferedConsole(&buf, INFO))

	multi.WithTraceID("modsync-run-21e0").Info("sync run started")

	if buf.Len() == 0 {
		t.Error("traced logger wrote nothing")
	}
}

func TestMultiLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(newBufferedConsole(&buf, INFO))

	ctx := ContextWithTraceID(context.Background(), "modsync-run-4d11")
	multi.WithContext(ctx).Info("history opened")

	if buf.Len() == 0 {
		t.Error("context logger wrote nothing")
	}
}

func TestMultiLogger_SetLevelPropagates(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiLogger(newBufferedConsole(&buf, DEBUG))

	multi.Debug("debug before raise")
	multi.SetLevel(ERROR)
	multi.Debug("dropped debug")
	multi.Info("dropped info")
	multi.Error("error after raise")

	output := buf.String()
	if !strings.Contains(output, "debug before raise") || !strings.Contains(output, "error after raise") {
		t.Errorf("expected entries missing:\n%s", output)
	}
	if strings.Contains(output, "dropped") {
		t.Errorf("filtered entries leaked:\n%s", output)
	}
}

func TestMultiLogger_CloseClosesSinks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sync.log")

	fileLogger, err := NewFileLogger(FileLoggerConfig{
		FilePath: logPath,
		Level:    INFO,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	multi := NewMultiLogger(fileLogger)
	if err := multi.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestMultiLogger_FileAndConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sync.log")
	var buf bytes.Buffer

	fileLogger, err := NewFileLogger(FileLoggerConfig{
		FilePath: logPath,
		Level:    INFO,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	multi := NewMultiLogger(fileLogger, newBufferedConsole(&buf, INFO))
	multi.Info("applied action", F("path", "mods/sodium.jar"))

	if err := multi.Close(); err != nil {
		t.Fatalf("close multi logger: %v", err)
	}

	if buf.Len() == 0 {
		t.Error("console sink received nothing")
	}
	fileData, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(fileData) == 0 {
		t.Error("file sink is empty")
	}
}
