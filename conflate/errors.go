package conflate

import "log"

// Warning records a recoverable anomaly encountered while processing a
// single feature. Nothing in this package returns an error for
// feature-level problems; an anomaly is recorded as a Warning and
// processing continues, the same way a malformed tag on one OSM way
// doesn't stop an import of ten thousand others. A Warning carries no
// feature id field; its Message names the primary and secondary
// indices concerned.
type Warning struct {
	Stage   string
	Message string
}

// Logger is the minimal interface Conflate uses to surface Warnings as
// they're produced, so a caller can stream them to its own log
// instead of only collecting them in the returned slice.
type Logger interface {
	Warnf(format string, args ...any)
}

// defaultLogger backs Logger with the standard library's log package,
// matching the house logging style used throughout the rest of this
// codebase's lineage.
type defaultLogger struct{}

func (defaultLogger) Warnf(format string, args ...any) {
	log.Printf("warn: "+format, args...)
}

// DefaultLogger returns the log.Default()-backed Logger used when a
// caller doesn't supply one.
func DefaultLogger() Logger {
	return defaultLogger{}
}
