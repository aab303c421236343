// Package loader reads GeoRecoveryRun plans from YAML, fills in defaults and
// generated resource names, and validates the result.
package loader

import (
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/naming"
)

// PrefixRun is the prefix of generated run names.
const PrefixRun = "geodr-"

// maxRunNameLength keeps run names usable as journal file names.
const maxRunNameLength = 63

var runNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// LoadFromFile loads a GeoRecoveryRun plan from a YAML file.
// The file must be in the geodr.jbweber.dev/v1alpha1 format.
func LoadFromFile(path string) (*v1alpha1.GeoRecoveryRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads a GeoRecoveryRun plan from YAML bytes and prepares it
// for execution.
func LoadFromYAML(data []byte) (*v1alpha1.GeoRecoveryRun, error) {
	var run v1alpha1.GeoRecoveryRun
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if run.APIVersion == "" {
		return nil, fmt.Errorf("missing required field: apiVersion")
	}
	if run.Kind == "" {
		return nil, fmt.Errorf("missing required field: kind")
	}

	expectedAPIVersion := v1alpha1.GroupName + "/" + v1alpha1.Version
	if run.APIVersion != expectedAPIVersion {
		return nil, fmt.Errorf("unsupported apiVersion: %s (expected: %s)", run.APIVersion, expectedAPIVersion)
	}
	if run.Kind != v1alpha1.GeoRecoveryRunKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", run.Kind, v1alpha1.GeoRecoveryRunKind)
	}

	if run.HasResources() {
		return nil, fmt.Errorf("plan %s carries status.resources from an earlier run; remove the status block, or use 'geodr cleanup %s' to tear those resources down", run.Name, run.Name)
	}

	if err := Prepare(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Default returns the plan used when no file is given: southcentralus to
// northcentralus, Standard SKU and fully generated names.
func Default() (*v1alpha1.GeoRecoveryRun, error) {
	run := v1alpha1.NewGeoRecoveryRun("")
	if err := Prepare(run); err != nil {
		return nil, err
	}
	return run, nil
}

// Prepare normalizes a plan, generates missing names and validates it.
// Any status carried by the plan is discarded: a prepared run is always a
// fresh Pending run at generation 1 with its own UID.
func Prepare(run *v1alpha1.GeoRecoveryRun) error {
	v1alpha1.SetDefaultAPIVersion(run)
	run.Status = v1alpha1.GeoRecoveryRunStatus{}
	run.Normalize()

	if run.Name == "" {
		run.Name = naming.RandomName(PrefixRun, maxRunNameLength)
	}
	run.UID = uuid.New().String()
	run.CreationTimestamp = v1alpha1.Now()
	run.Generation = 1

	names, err := naming.Generate(naming.Names{
		ResourceGroup:      run.Spec.Names.ResourceGroup,
		PrimaryNamespace:   run.Spec.Names.PrimaryNamespace,
		SecondaryNamespace: run.Spec.Names.SecondaryNamespace,
		Alias:              run.Spec.Names.Alias,
		EventHub:           run.Spec.Names.EventHub,
	})
	if err != nil {
		return fmt.Errorf("validation failed: spec.names: %w", err)
	}
	run.Spec.Names = v1alpha1.ResourceNames{
		ResourceGroup:      names.ResourceGroup,
		PrimaryNamespace:   names.PrimaryNamespace,
		SecondaryNamespace: names.SecondaryNamespace,
		Alias:              names.Alias,
		EventHub:           names.EventHub,
	}

	if err := validateSpec(run); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// SaveToFile writes the plan part of a GeoRecoveryRun to a YAML file: name,
// labels and spec. Status and run identity are left out so the file can be
// run again as a new run.
func SaveToFile(run *v1alpha1.GeoRecoveryRun, path string) error {
	plan := run.DeepCopy()
	v1alpha1.SetDefaultAPIVersion(plan)
	plan.ObjectMeta = v1alpha1.ObjectMeta{
		Name:   plan.Name,
		Labels: plan.Labels,
	}
	plan.Status = v1alpha1.GeoRecoveryRunStatus{}

	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal run to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// validateSpec checks a normalized run for required fields and consistency.
func validateSpec(run *v1alpha1.GeoRecoveryRun) error {
	if len(run.Name) > maxRunNameLength || !runNamePattern.MatchString(run.Name) {
		return fmt.Errorf("metadata.name must be 2-%d lowercase letters, digits or hyphens, got %q", maxRunNameLength, run.Name)
	}

	s := run.Spec
	if s.PrimaryLocation == s.SecondaryLocation {
		return fmt.Errorf("spec.primaryLocation and spec.secondaryLocation must differ, both are %q", s.PrimaryLocation)
	}

	switch s.SKU {
	case "Standard", "Premium":
	default:
		return fmt.Errorf("spec.sku must be Standard or Premium for geo-disaster recovery, got %q", s.SKU)
	}

	if s.PartitionCount <= 0 {
		return fmt.Errorf("spec.partitionCount must be greater than 0")
	}

	switch s.Sync.Strategy {
	case v1alpha1.SyncStrategyFixed, v1alpha1.SyncStrategyPoll:
	default:
		return fmt.Errorf("spec.sync.strategy must be %q or %q, got %q", v1alpha1.SyncStrategyFixed, v1alpha1.SyncStrategyPoll, s.Sync.Strategy)
	}

	if s.Sync.Delay.Duration < 0 || s.Sync.Timeout.Duration < 0 || s.PairingTimeout.Duration < 0 {
		return fmt.Errorf("spec durations must not be negative")
	}
	if s.Sync.InitialInterval.Duration <= 0 || s.Sync.MaxInterval.Duration < s.Sync.InitialInterval.Duration {
		return fmt.Errorf("spec.sync.maxInterval (%s) must be at least spec.sync.initialInterval (%s)", s.Sync.MaxInterval, s.Sync.InitialInterval)
	}

	return nil
}
