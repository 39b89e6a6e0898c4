// Package validation checks user supplied command and request arguments
// before they reach the services.
package validation

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fjacquet/fintrack/internal/dateutils"
)

// IsValidInputFile checks that path names an existing regular file.
func IsValidInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("input file is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	return nil
}

// IsValidOutputFile checks that path can be created as a file: it must not
// be empty or name an existing directory.
func IsValidOutputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output file is required")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}
	return nil
}

// IsValidReportFormat checks a report rendering format.
func IsValidReportFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s. Supported formats are 'json', 'yaml'", format)
	}
}

// IsValidDelimiter checks that delim is a single printable character other
// than a quote or line break.
func IsValidDelimiter(delim string) (rune, error) {
	runes := []rune(delim)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got: %q", delim)
	}
	switch r := runes[0]; r {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("invalid delimiter: %q", delim)
	default:
		return r, nil
	}
}

// ParseID parses a positive numeric identifier.
func ParseID(name, value string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}
	return uint(id), nil
}

// ParseDateRange parses optional start and end dates. An empty value leaves
// that side open. Both bounds are inclusive calendar days.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if strings.TrimSpace(start) != "" {
		if from, _, err = dateutils.ParseDate(start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if strings.TrimSpace(end) != "" {
		if to, _, err = dateutils.ParseDate(end); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			dateutils.ToISODate(to), dateutils.ToISODate(from))
	}
	return from, to, nil
}
