package v1alpha1

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// GroupName is the API group for geodr resources.
	GroupName = "geodr.jbweber.dev"

	// Version is the API version.
	Version = "v1alpha1"

	// GeoRecoveryRunKind is the kind string for GeoRecoveryRun resources.
	GeoRecoveryRunKind = "GeoRecoveryRun"
)

// Defaults applied to omitted spec fields.
const (
	DefaultPrimaryLocation       = "southcentralus"
	DefaultSecondaryLocation     = "northcentralus"
	DefaultSKU                   = "Standard"
	DefaultPartitionCount        = 4
	DefaultConsumerGroup         = "consumerGrp1"
	DefaultConsumerGroupMetadata = "sometadata"
	DefaultSyncStrategy          = SyncStrategyPoll
	DefaultSyncDelay             = 80 * time.Second
	DefaultSyncTimeout           = 5 * time.Minute
	DefaultSyncInitialInterval   = 5 * time.Second
	DefaultSyncMaxInterval       = 30 * time.Second
	DefaultPairingTimeout        = 5 * time.Minute
)

// NewGeoRecoveryRun creates a run with TypeMeta, ObjectMeta and spec defaults.
// Resource names are left empty; the loader generates them.
func NewGeoRecoveryRun(name string) *GeoRecoveryRun {
	run := &GeoRecoveryRun{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       GeoRecoveryRunKind,
		},
		ObjectMeta: ObjectMeta{
			Name:              name,
			UID:               uuid.New().String(),
			CreationTimestamp: Now(),
			Generation:        1,
		},
		Status: GeoRecoveryRunStatus{
			Phase: RunPhasePending,
		},
	}
	run.Normalize()
	return run
}

// SetDefaultAPIVersion ensures the run has the correct apiVersion and kind.
func SetDefaultAPIVersion(run *GeoRecoveryRun) {
	if run.APIVersion == "" {
		run.APIVersion = GroupName + "/" + Version
	}
	if run.Kind == "" {
		run.Kind = GeoRecoveryRunKind
	}
}

// Normalize lowercases locations and names and fills in spec defaults.
func (run *GeoRecoveryRun) Normalize() {
	run.Name = strings.ToLower(strings.TrimSpace(run.Name))

	s := &run.Spec
	s.PrimaryLocation = normalizeLocation(s.PrimaryLocation)
	s.SecondaryLocation = normalizeLocation(s.SecondaryLocation)
	if s.PrimaryLocation == "" {
		s.PrimaryLocation = DefaultPrimaryLocation
	}
	if s.SecondaryLocation == "" {
		s.SecondaryLocation = DefaultSecondaryLocation
	}
	if s.SKU == "" {
		s.SKU = DefaultSKU
	}
	if s.PartitionCount == 0 {
		s.PartitionCount = DefaultPartitionCount
	}
	if s.ConsumerGroup == "" {
		s.ConsumerGroup = DefaultConsumerGroup
	}
	if s.ConsumerGroupMetadata == "" {
		s.ConsumerGroupMetadata = DefaultConsumerGroupMetadata
	}
	if s.Sync.Strategy == "" {
		s.Sync.Strategy = DefaultSyncStrategy
	}
	if s.Sync.Delay.Duration == 0 {
		s.Sync.Delay.Duration = DefaultSyncDelay
	}
	if s.Sync.Timeout.Duration == 0 {
		s.Sync.Timeout.Duration = DefaultSyncTimeout
	}
	if s.Sync.InitialInterval.Duration == 0 {
		s.Sync.InitialInterval.Duration = DefaultSyncInitialInterval
	}
	if s.Sync.MaxInterval.Duration == 0 {
		s.Sync.MaxInterval.Duration = DefaultSyncMaxInterval
	}
	if s.PairingTimeout.Duration == 0 {
		s.PairingTimeout.Duration = DefaultPairingTimeout
	}

	n := &s.Names
	n.ResourceGroup = strings.TrimSpace(n.ResourceGroup)
	n.PrimaryNamespace = strings.ToLower(strings.TrimSpace(n.PrimaryNamespace))
	n.SecondaryNamespace = strings.ToLower(strings.TrimSpace(n.SecondaryNamespace))
	n.Alias = strings.ToLower(strings.TrimSpace(n.Alias))
	n.EventHub = strings.ToLower(strings.TrimSpace(n.EventHub))

	if run.Status.Phase == "" {
		run.Status.Phase = RunPhasePending
	}
}

// "South Central US" and "southcentralus" name the same region.
func normalizeLocation(loc string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(loc), " ", ""))
}

// SetPhase sets the run phase in status.
func (run *GeoRecoveryRun) SetPhase(phase RunPhase) {
	run.Status.Phase = phase
}

// GetPhase returns the current run phase.
func (run *GeoRecoveryRun) GetPhase() RunPhase {
	return run.Status.Phase
}

// UpdateObservedGeneration updates status.observedGeneration to match metadata.generation.
func (run *GeoRecoveryRun) UpdateObservedGeneration() {
	run.Status.ObservedGeneration = run.Generation
}

// HasResources reports whether a resource that teardown acts on, the
// resource group or the pairing, was recorded as created.
func (run *GeoRecoveryRun) HasResources() bool {
	r := run.Status.Resources
	return r.ResourceGroupID != "" || r.PairingID != ""
}

// ResourceGroupTags returns labels and spec tags merged, spec tags winning,
// plus the run UID so the group can be traced back to its journal entry.
func (run *GeoRecoveryRun) ResourceGroupTags() map[string]string {
	tags := make(map[string]string, len(run.Labels)+len(run.Spec.Tags)+1)
	for k, v := range run.Labels {
		tags[k] = v
	}
	for k, v := range run.Spec.Tags {
		tags[k] = v
	}
	if run.UID != "" {
		tags[GroupName+"/run-uid"] = run.UID
	}
	return tags
}

// DeepCopy creates a deep copy of the run.
func (in *GeoRecoveryRun) DeepCopy() *GeoRecoveryRun {
	if in == nil {
		return nil
	}
	out := new(GeoRecoveryRun)
	*out = *in
	out.Labels = copyMap(in.Labels)
	out.Spec.Tags = copyMap(in.Spec.Tags)
	if in.Status.Conditions != nil {
		out.Status.Conditions = make([]Condition, len(in.Status.Conditions))
		copy(out.Status.Conditions, in.Status.Conditions)
	}
	if in.Status.AccessKeys != nil {
		out.Status.AccessKeys = make([]AccessKeyStatus, len(in.Status.AccessKeys))
		copy(out.Status.AccessKeys, in.Status.AccessKeys)
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
