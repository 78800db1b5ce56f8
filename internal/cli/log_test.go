package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatmap/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("laid out 12 cells")

	out := buf.String()
	if !strings.Contains(out, "laid out 12 cells (") {
		t.Errorf("progress output = %q, want message with duration", out)
	}
}

func TestEnableHookLogging(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	enableHookLogging(newLogger(&buf, log.DebugLevel))

	ctx := context.Background()
	observability.Pipeline().OnLayoutStart(ctx, 4)
	observability.Cache().OnCacheHit(ctx, "layout")
	observability.HTTP().OnRequest(ctx, "GET", "/healthz")

	out := buf.String()
	for _, want := range []string{"4", "layout", "/healthz"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook log missing %q:\n%s", want, out)
		}
	}
}
