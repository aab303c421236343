package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// JSONFormatter formats runs as JSON.
type JSONFormatter struct{}

// FormatRun formats a single run as JSON.
func (f *JSONFormatter) FormatRun(run *v1alpha1.GeoRecoveryRun) (string, error) {
	v1alpha1.SetDefaultAPIVersion(run)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run to JSON: %w", err)
	}

	return string(data) + "\n", nil
}

// FormatRunList formats a list of runs as a Kubernetes-style list object:
//
//	{
//	  "apiVersion": "geodr.jbweber.dev/v1alpha1",
//	  "kind": "GeoRecoveryRunList",
//	  "items": [...]
//	}
func (f *JSONFormatter) FormatRunList(runs []*v1alpha1.GeoRecoveryRun) (string, error) {
	for _, run := range runs {
		v1alpha1.SetDefaultAPIVersion(run)
	}
	if runs == nil {
		runs = []*v1alpha1.GeoRecoveryRun{}
	}

	list := struct {
		APIVersion string                     `json:"apiVersion"`
		Kind       string                     `json:"kind"`
		Items      []*v1alpha1.GeoRecoveryRun `json:"items"`
	}{
		APIVersion: v1alpha1.GroupName + "/" + v1alpha1.Version,
		Kind:       v1alpha1.GeoRecoveryRunKind + "List",
		Items:      runs,
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run list to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
