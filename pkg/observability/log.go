package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug line on a charmbracelet logger.
// It implements PipelineHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnImportStart(_ context.Context, format, source string) {
	h.logger.Debug("import start", "format", format, "source", source)
}

func (h *LogHooks) OnImportComplete(_ context.Context, format, source string, positions int, d time.Duration, err error) {
	h.done("import", err, "format", format, "source", source, "positions", positions, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, positions int) {
	h.logger.Debug("layout start", "positions", positions)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, cells int, d time.Duration, err error) {
	h.done("layout", err, "cells", cells, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", err, "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Warn("request failed", "method", method, "path", path, "err", err)
}

func (h *LogHooks) done(what string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(what+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(what+" complete", kv...)
}
