package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// TableFormatter formats runs as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
	// Wide adds resource group, alias, event hub and message columns.
	Wide bool
}

// FormatRun formats a single run as a table row.
func (f *TableFormatter) FormatRun(run *v1alpha1.GeoRecoveryRun) (string, error) {
	return f.FormatRunList([]*v1alpha1.GeoRecoveryRun{run})
}

// FormatRunList formats a list of runs as a table.
func (f *TableFormatter) FormatRunList(runs []*v1alpha1.GeoRecoveryRun) (string, error) {
	if len(runs) == 0 {
		return "No runs found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		header := "NAME\tPHASE\tPRIMARY\tSECONDARY\tFAILED OVER\tAGE"
		if f.Wide {
			header += "\tRESOURCE GROUP\tALIAS\tEVENT HUB\tMESSAGE"
		}
		_, _ = fmt.Fprintln(w, header)
	}

	for _, run := range runs {
		phase := string(run.Status.Phase)
		if phase == "" {
			phase = "-"
		}

		failedOver := "no"
		if run.Status.FailedOver {
			failedOver = "yes"
		}

		age := "-"
		if !run.CreationTimestamp.IsZero() {
			age = formatAge(time.Since(run.CreationTimestamp.Time))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s",
			run.Name, phase,
			dash(run.Spec.Names.PrimaryNamespace)+"@"+dash(run.Spec.PrimaryLocation),
			dash(run.Spec.Names.SecondaryNamespace)+"@"+dash(run.Spec.SecondaryLocation),
			failedOver, age)

		if f.Wide {
			_, _ = fmt.Fprintf(w, "\t%s\t%s\t%s\t%s",
				dash(run.Spec.Names.ResourceGroup),
				dash(run.Spec.Names.Alias),
				dash(run.Spec.Names.EventHub),
				dash(run.Status.Message))
		}
		_, _ = fmt.Fprintln(w)
	}

	_ = w.Flush()
	return buf.String(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d", "2w", "1y"
func formatAge(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}

	weeks := days / 7
	if weeks < 8 {
		return fmt.Sprintf("%dw", weeks)
	}

	if years := days / 365; years > 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dd", days)
}
