package geodr

import (
	"context"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/journal"
)

var (
	_ managementClient = (*azure.Client)(nil)
	_ runJournal       = (*journal.Store)(nil)
)

// managementClient is the subset of Azure Resource Manager calls a run
// makes.
//
// In production, this is satisfied by *azure.Client.
// In tests, this is satisfied by mock implementations.
type managementClient interface {
	ResourceGroupExists(ctx context.Context, name string) (bool, error)
	CreateResourceGroup(ctx context.Context, name, location string, tags map[string]string) (azure.ResourceGroup, error)
	DeleteResourceGroup(ctx context.Context, name string) error

	CreateNamespace(ctx context.Context, resourceGroup, name, location, sku string) (azure.Namespace, error)

	CreatePairing(ctx context.Context, resourceGroup, namespace, alias, partnerNamespaceID string) (azure.Pairing, error)
	GetPairing(ctx context.Context, resourceGroup, namespace, alias string) (azure.Pairing, error)
	BreakPairing(ctx context.Context, resourceGroup, namespace, alias string) error
	FailOver(ctx context.Context, resourceGroup, namespace, alias string) error
	ListPairingRules(ctx context.Context, resourceGroup, namespace, alias string) ([]string, error)
	GetPairingKeys(ctx context.Context, resourceGroup, namespace, alias, rule string) (azure.AccessKeys, error)

	CreateEventHub(ctx context.Context, resourceGroup, namespace, name string, partitionCount int64) (azure.EventHub, error)
	GetEventHub(ctx context.Context, resourceGroup, namespace, name string) (azure.EventHub, error)
	CreateConsumerGroup(ctx context.Context, resourceGroup, namespace, eventHub, name, userMetadata string) (azure.ConsumerGroup, error)
}

// runJournal persists run records.
//
// In production, this is satisfied by *journal.Store.
type runJournal interface {
	Save(run *v1alpha1.GeoRecoveryRun) error
	Load(name string) (*v1alpha1.GeoRecoveryRun, error)
	Delete(name string) error
}
