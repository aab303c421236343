// Package output renders GeoRecoveryRun records as table, YAML or JSON.
package output

import (
	"fmt"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is the full run record as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON is the full run record as JSON.
	FormatJSON Format = "json"
)

// Formatter formats run records for output.
type Formatter interface {
	// FormatRun formats a single run.
	FormatRun(run *v1alpha1.GeoRecoveryRun) (string, error)

	// FormatRunList formats a list of runs.
	FormatRunList(runs []*v1alpha1.GeoRecoveryRun) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
	// Wide adds resource names and the status message to table output.
	Wide bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders, Wide: opts.Wide}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
