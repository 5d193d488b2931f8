package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks a bad root directory or unusable arguments.
	// Fatal: nothing has been touched when it is returned.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIO marks a per-file read or move failure. Recovered: the file is
	// counted as failed and the run continues.
	ErrIO = errors.New("io error")
	// ErrConfig marks an absent or malformed configuration source. Recovered
	// by falling back to built-in defaults.
	ErrConfig = errors.New("configuration error")
	// ErrLocked marks a root directory already being organized by another
	// process.
	ErrLocked = errors.New("directory locked")
)

// Wrap builds an error message with stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err should abort the run before processing starts.
func Fatal(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrLocked)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "organizer failure"
	}
	return strings.Join(parts, ": ")
}
