// Package logging decouples the ledger services from logrus. Services take a
// Logger in their constructors; tests inject a MockLogger and assert on the
// captured entries.
package logging

// Logger is the structured logger used by every service and handler.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger that attaches err to every entry.
	WithError(err error) Logger

	// WithFields returns a child logger that attaches fields to every entry.
	WithFields(fields ...Field) Logger
}

// Field is one key-value pair of a log entry. Keys should come from the
// Field* constants.
type Field struct {
	Key   string
	Value interface{}
}
