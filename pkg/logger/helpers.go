package logger

import (
	"context"
	"fmt"
)

// LogRequest logs an image fetch with its outcome
func LogRequest(l Logger, method, url string, statusCode int, durationMS float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMS,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	}
}

// LogAssetStored logs a persisted image
func LogAssetStored(l Logger, postIndex int, sourceURL, location string) {
	l.DebugWithFields("Asset stored", map[string]interface{}{
		"post_index": postIndex,
		"source_url": truncate(sourceURL, 120),
		"location":   location,
	})
}

// LogAssetFailed logs a dropped image. The post keeps going.
func LogAssetFailed(l Logger, postIndex int, sourceURL string, err error) {
	l.WithError(err).WarnWithFields("Failed to store image, skipping", map[string]interface{}{
		"post_index": postIndex,
		"source_url": truncate(sourceURL, 120),
	})
}

// LogPostDropped logs a post whose partial record was discarded
func LogPostDropped(l Logger, postIndex int, err error) {
	l.WithError(err).ErrorWithFields("Error processing post, discarding", map[string]interface{}{
		"post_index": postIndex,
	})
}

// LogScrapeProgress logs per-post progress
func LogScrapeProgress(l Logger, processed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(processed) / float64(total) * 100
	}

	l.WithFields(map[string]interface{}{
		"processed":  processed,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Debug("Scraping progress")
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	cl := l.WithField("component", component)
	if len(config) > 0 {
		cl = cl.WithFields(config)
	}
	cl.Info("Component started")
}

// truncate shortens long URLs for log lines
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
