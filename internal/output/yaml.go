package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// YAMLFormatter formats runs as YAML.
type YAMLFormatter struct{}

// FormatRun formats a single run as YAML.
func (f *YAMLFormatter) FormatRun(run *v1alpha1.GeoRecoveryRun) (string, error) {
	v1alpha1.SetDefaultAPIVersion(run)

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run to YAML: %w", err)
	}

	return string(data), nil
}

// FormatRunList formats a list of runs as a YAML stream, one document per
// run.
func (f *YAMLFormatter) FormatRunList(runs []*v1alpha1.GeoRecoveryRun) (string, error) {
	if len(runs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for i, run := range runs {
		v1alpha1.SetDefaultAPIVersion(run)

		data, err := yaml.Marshal(run)
		if err != nil {
			return "", fmt.Errorf("failed to marshal run %s to YAML: %w", run.Name, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}
