// Package logger provides the structured logging interface used across threadscraper.
//
// It wraps zerolog with a small interface so components can take a Logger,
// tests can swap in NewTestLogger or NewNopLogger, and the CLI can configure
// one global instance:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("url", cfg.Target.URL).Info("Opening saved page")
//
// Console output is colored and goes to stderr. When a log file is
// configured, JSON lines are appended to it as well.
//
// Level conventions: expected misses such as an unmatched selector are
// Debug, a dropped image is Warn, a discarded post is Error.
package logger
