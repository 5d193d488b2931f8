// Package logging builds the slog loggers used across nexsort.
//
// Two output formats are supported: a single-line console format that promotes
// the component attribute into the message prefix, and plain JSON for log
// collection. Components tag themselves with logging.String(FieldComponent, …)
// so records stay attributable once several subsystems share one logger.
package logging
