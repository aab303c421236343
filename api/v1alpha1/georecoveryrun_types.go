package v1alpha1

// GeoRecoveryRun describes one end-to-end geo-disaster-recovery walkthrough:
// two Event Hubs namespaces in different regions, an alias pairing them, an
// event hub and consumer group whose metadata replicates to the secondary,
// and an optional failover. The resource group holding everything is torn
// down when the run ends.
//
// Spec is the plan. Status is filled in as the run progresses and is what
// the journal persists.
type GeoRecoveryRun struct {
	TypeMeta `json:",inline" yaml:",inline"`

	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec GeoRecoveryRunSpec `json:"spec" yaml:"spec"`

	// +optional
	Status GeoRecoveryRunStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// GeoRecoveryRunSpec defines the plan for a run.
type GeoRecoveryRunSpec struct {
	// PrimaryLocation is the Azure region of the resource group and the
	// primary namespace. Defaults to "southcentralus".
	// +optional
	PrimaryLocation string `json:"primaryLocation,omitempty" yaml:"primaryLocation,omitempty"`

	// SecondaryLocation is the Azure region of the secondary namespace.
	// Must differ from PrimaryLocation. Defaults to "northcentralus".
	// +optional
	SecondaryLocation string `json:"secondaryLocation,omitempty" yaml:"secondaryLocation,omitempty"`

	// Names pins resource names. Empty fields are generated from random
	// suffixes at plan time.
	// +optional
	Names ResourceNames `json:"names,omitempty" yaml:"names,omitempty"`

	// SKU is the namespace tier. Geo-disaster recovery needs Standard or Premium.
	// +optional
	SKU string `json:"sku,omitempty" yaml:"sku,omitempty"`

	// PartitionCount of the event hub created in the primary namespace.
	// +optional
	PartitionCount int64 `json:"partitionCount,omitempty" yaml:"partitionCount,omitempty"`

	// ConsumerGroup is the consumer group created under the event hub.
	// +optional
	ConsumerGroup string `json:"consumerGroup,omitempty" yaml:"consumerGroup,omitempty"`

	// ConsumerGroupMetadata is free-form user metadata attached to the consumer group.
	// +optional
	ConsumerGroupMetadata string `json:"consumerGroupMetadata,omitempty" yaml:"consumerGroupMetadata,omitempty"`

	// Sync controls how the run waits for metadata to reach the secondary.
	// +optional
	Sync SyncSpec `json:"sync,omitempty" yaml:"sync,omitempty"`

	// PairingTimeout bounds the wait for the alias to finish provisioning.
	// +optional
	PairingTimeout Duration `json:"pairingTimeout,omitempty" yaml:"pairingTimeout,omitempty"`

	// SkipFailover leaves the pairing in place; cleanup then breaks it.
	// +optional
	SkipFailover bool `json:"skipFailover,omitempty" yaml:"skipFailover,omitempty"`

	// Tags are applied to the resource group in addition to metadata.labels.
	// +optional
	Tags map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ResourceNames are the Azure names used by one run.
type ResourceNames struct {
	ResourceGroup      string `json:"resourceGroup,omitempty" yaml:"resourceGroup,omitempty"`
	PrimaryNamespace   string `json:"primaryNamespace,omitempty" yaml:"primaryNamespace,omitempty"`
	SecondaryNamespace string `json:"secondaryNamespace,omitempty" yaml:"secondaryNamespace,omitempty"`
	Alias              string `json:"alias,omitempty" yaml:"alias,omitempty"`
	EventHub           string `json:"eventHub,omitempty" yaml:"eventHub,omitempty"`
}

// SyncStrategy selects how metadata propagation is awaited.
type SyncStrategy string

const (
	// SyncStrategyFixed sleeps for Delay and reads the hub once.
	SyncStrategyFixed SyncStrategy = "fixed"

	// SyncStrategyPoll polls the secondary with exponential backoff until
	// the hub appears or Timeout elapses.
	SyncStrategyPoll SyncStrategy = "poll"
)

// SyncSpec configures the propagation wait.
type SyncSpec struct {
	// Strategy is "fixed" or "poll". Defaults to "poll".
	// +optional
	Strategy SyncStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// Delay is the blind wait used by the fixed strategy. Defaults to 80s.
	// +optional
	Delay Duration `json:"delay,omitempty" yaml:"delay,omitempty"`

	// Timeout bounds the poll strategy. Defaults to 5m.
	// +optional
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// InitialInterval is the first backoff interval of the poll strategy.
	// +optional
	InitialInterval Duration `json:"initialInterval,omitempty" yaml:"initialInterval,omitempty"`

	// MaxInterval caps the backoff interval of the poll strategy.
	// +optional
	MaxInterval Duration `json:"maxInterval,omitempty" yaml:"maxInterval,omitempty"`
}

// GeoRecoveryRunStatus is the observed state of a run.
type GeoRecoveryRunStatus struct {
	// +optional
	Phase RunPhase `json:"phase,omitempty" yaml:"phase,omitempty"`

	// +optional
	// +listType=map
	// +listMapKey=type
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Resources holds the Azure resource IDs acquired so far. Cleanup
	// decides what to tear down from these.
	// +optional
	Resources ResourceStatus `json:"resources,omitempty" yaml:"resources,omitempty"`

	// AccessKeys are the alias connection strings read from the pairing.
	// +optional
	AccessKeys []AccessKeyStatus `json:"accessKeys,omitempty" yaml:"accessKeys,omitempty"`

	// FailedOver is true once the failover request succeeded.
	// +optional
	FailedOver bool `json:"failedOver,omitempty" yaml:"failedOver,omitempty"`

	// +optional
	StartTime Time `json:"startTime,omitempty" yaml:"startTime,omitempty"`

	// +optional
	CompletionTime Time `json:"completionTime,omitempty" yaml:"completionTime,omitempty"`

	// StepError is the error that stopped the sequence, if any. It is kept
	// when teardown is replayed later.
	// +optional
	StepError string `json:"stepError,omitempty" yaml:"stepError,omitempty"`

	// Message summarizes why the run failed: the step error followed by the
	// teardown error, if any.
	// +optional
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// ObservedGeneration is the plan generation the run acted on.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty" yaml:"observedGeneration,omitempty"`
}

// ResourceStatus records Azure resource IDs. An empty field means the
// resource was never created.
type ResourceStatus struct {
	ResourceGroupID      string `json:"resourceGroupID,omitempty" yaml:"resourceGroupID,omitempty"`
	PrimaryNamespaceID   string `json:"primaryNamespaceID,omitempty" yaml:"primaryNamespaceID,omitempty"`
	SecondaryNamespaceID string `json:"secondaryNamespaceID,omitempty" yaml:"secondaryNamespaceID,omitempty"`
	PairingID            string `json:"pairingID,omitempty" yaml:"pairingID,omitempty"`
	EventHubID           string `json:"eventHubID,omitempty" yaml:"eventHubID,omitempty"`
	ConsumerGroupID      string `json:"consumerGroupID,omitempty" yaml:"consumerGroupID,omitempty"`
}

// AccessKeyStatus is one authorization rule of the alias and its alias
// primary connection string.
type AccessKeyStatus struct {
	Rule                         string `json:"rule" yaml:"rule"`
	AliasPrimaryConnectionString string `json:"aliasPrimaryConnectionString,omitempty" yaml:"aliasPrimaryConnectionString,omitempty"`
}

// RunPhase represents the lifecycle phase of a GeoRecoveryRun.
type RunPhase string

const (
	// RunPhasePending means the plan is accepted but nothing was created yet.
	RunPhasePending RunPhase = "Pending"

	// RunPhaseProvisioning means the group, namespaces, pairing, hub and
	// consumer group are being created.
	RunPhaseProvisioning RunPhase = "Provisioning"

	// RunPhaseSyncing means the run waits for metadata on the secondary.
	RunPhaseSyncing RunPhase = "Syncing"

	// RunPhaseFailingOver means keys were read and failover was requested.
	RunPhaseFailingOver RunPhase = "FailingOver"

	// RunPhaseCleaningUp means teardown is in progress.
	RunPhaseCleaningUp RunPhase = "CleaningUp"

	// RunPhaseCompleted means every step and the teardown succeeded.
	RunPhaseCompleted RunPhase = "Completed"

	// RunPhaseFailed means a step or the teardown failed. See status.message.
	RunPhaseFailed RunPhase = "Failed"
)

// Standard condition types for GeoRecoveryRun resources.
const (
	// ConditionResourcesProvisioned indicates the group and both namespaces exist.
	ConditionResourcesProvisioned = "ResourcesProvisioned"

	// ConditionPaired indicates the alias exists and finished provisioning.
	ConditionPaired = "Paired"

	// ConditionMetadataPropagated indicates the event hub was read from the secondary.
	ConditionMetadataPropagated = "MetadataPropagated"

	// ConditionFailedOver indicates the secondary was promoted.
	ConditionFailedOver = "FailedOver"

	// ConditionCleanedUp indicates teardown ran without errors.
	ConditionCleanedUp = "CleanedUp"
)
