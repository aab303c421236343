package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/eventhub/armeventhub"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// managementScope is the token scope for Azure Resource Manager.
const managementScope = "https://management.azure.com/.default"

// Client bundles the ARM clients used by a run. All of them share one
// credential and one subscription.
type Client struct {
	subscriptionID string
	credential     azcore.TokenCredential

	resourceGroups *armresources.ResourceGroupsClient
	namespaces     *armeventhub.NamespacesClient
	eventHubs      *armeventhub.EventHubsClient
	consumerGroups *armeventhub.ConsumerGroupsClient
	disasterConfig *armeventhub.DisasterRecoveryConfigsClient
}

// Connect resolves credentials with the default Azure credential chain
// (environment, workload identity, managed identity, Azure CLI, ...) and
// returns a Client scoped to subscriptionID.
func Connect(ctx context.Context, subscriptionID string) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connection cancelled: %w", err)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve azure credentials: %w", err)
	}

	return NewClient(subscriptionID, cred, nil)
}

// NewClient builds a Client from an explicit credential. opts may be nil.
func NewClient(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (*Client, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}
	if cred == nil {
		return nil, fmt.Errorf("credential is required")
	}

	resources, err := armresources.NewClientFactory(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create resources client factory: %w", err)
	}

	eventhub, err := armeventhub.NewClientFactory(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create eventhub client factory: %w", err)
	}

	return &Client{
		subscriptionID: subscriptionID,
		credential:     cred,
		resourceGroups: resources.NewResourceGroupsClient(),
		namespaces:     eventhub.NewNamespacesClient(),
		eventHubs:      eventhub.NewEventHubsClient(),
		consumerGroups: eventhub.NewConsumerGroupsClient(),
		disasterConfig: eventhub.NewDisasterRecoveryConfigsClient(),
	}, nil
}

// SubscriptionID returns the subscription the client is scoped to.
func (c *Client) SubscriptionID() string {
	return c.subscriptionID
}

// Ping verifies the credential can obtain a management token.
func (c *Client) Ping(ctx context.Context) error {
	if c.credential == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := c.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{managementScope}}); err != nil {
		return fmt.Errorf("failed to acquire management token: %w", err)
	}

	return nil
}

// ResourceGroupExists reports whether a resource group with name exists in
// the subscription.
func (c *Client) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.resourceGroups.CheckExistence(ctx, name, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check resource group %s: %w", name, err)
	}
	return resp.Success, nil
}

// CreateResourceGroup creates (or updates) a resource group.
func (c *Client) CreateResourceGroup(ctx context.Context, name, location string, tags map[string]string) (ResourceGroup, error) {
	params := armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags:     toTags(tags),
	}

	resp, err := c.resourceGroups.CreateOrUpdate(ctx, name, params, nil)
	if err != nil {
		return ResourceGroup{}, fmt.Errorf("failed to create resource group %s: %w", name, err)
	}

	return toResourceGroup(resp.ResourceGroup), nil
}

// DeleteResourceGroup deletes a resource group and everything in it, and
// waits for the deletion to finish.
func (c *Client) DeleteResourceGroup(ctx context.Context, name string) error {
	poller, err := c.resourceGroups.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to start deleting resource group %s: %w", name, err)
	}

	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}

	return nil
}

// CreateNamespace creates an Event Hubs namespace and waits until it is provisioned.
func (c *Client) CreateNamespace(ctx context.Context, resourceGroup, name, location, sku string) (Namespace, error) {
	params := armeventhub.EHNamespace{
		Location: to.Ptr(location),
		SKU: &armeventhub.SKU{
			Name: to.Ptr(armeventhub.SKUName(sku)),
			Tier: to.Ptr(armeventhub.SKUTier(sku)),
		},
	}

	poller, err := c.namespaces.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return Namespace{}, fmt.Errorf("failed to start creating namespace %s: %w", name, err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return Namespace{}, fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	return toNamespace(resp.EHNamespace), nil
}

// CreatePairing creates a disaster-recovery alias on namespace with
// partnerNamespaceID as the secondary. The returned pairing is usually still
// in the Accepted state.
func (c *Client) CreatePairing(ctx context.Context, resourceGroup, namespace, alias, partnerNamespaceID string) (Pairing, error) {
	params := armeventhub.ArmDisasterRecovery{
		Properties: &armeventhub.ArmDisasterRecoveryProperties{
			PartnerNamespace: to.Ptr(partnerNamespaceID),
		},
	}

	resp, err := c.disasterConfig.CreateOrUpdate(ctx, resourceGroup, namespace, alias, params, nil)
	if err != nil {
		return Pairing{}, fmt.Errorf("failed to create pairing %s on %s: %w", alias, namespace, err)
	}

	return toPairing(namespace, resp.ArmDisasterRecovery), nil
}

// GetPairing reads an alias as seen from namespace.
func (c *Client) GetPairing(ctx context.Context, resourceGroup, namespace, alias string) (Pairing, error) {
	resp, err := c.disasterConfig.Get(ctx, resourceGroup, namespace, alias, nil)
	if err != nil {
		return Pairing{}, fmt.Errorf("failed to get pairing %s on %s: %w", alias, namespace, err)
	}

	return toPairing(namespace, resp.ArmDisasterRecovery), nil
}

// BreakPairing stops replication between the primary and secondary. It must
// be called on the primary namespace.
func (c *Client) BreakPairing(ctx context.Context, resourceGroup, namespace, alias string) error {
	if _, err := c.disasterConfig.BreakPairing(ctx, resourceGroup, namespace, alias, nil); err != nil {
		return fmt.Errorf("failed to break pairing %s on %s: %w", alias, namespace, err)
	}
	return nil
}

// FailOver promotes the secondary. It must be called on the secondary namespace.
func (c *Client) FailOver(ctx context.Context, resourceGroup, namespace, alias string) error {
	if _, err := c.disasterConfig.FailOver(ctx, resourceGroup, namespace, alias, nil); err != nil {
		return fmt.Errorf("failed to fail over pairing %s on %s: %w", alias, namespace, err)
	}
	return nil
}

// ListPairingRules returns the names of the authorization rules of an alias.
func (c *Client) ListPairingRules(ctx context.Context, resourceGroup, namespace, alias string) ([]string, error) {
	pager := c.disasterConfig.NewListAuthorizationRulesPager(resourceGroup, namespace, alias, nil)

	names, err := collectRuleNames(ctx, pager)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorization rules of pairing %s: %w", alias, err)
	}

	return names, nil
}

// GetPairingKeys reads the keys of one alias authorization rule.
func (c *Client) GetPairingKeys(ctx context.Context, resourceGroup, namespace, alias, rule string) (AccessKeys, error) {
	resp, err := c.disasterConfig.ListKeys(ctx, resourceGroup, namespace, alias, rule, nil)
	if err != nil {
		return AccessKeys{}, fmt.Errorf("failed to list keys of rule %s on pairing %s: %w", rule, alias, err)
	}

	return toAccessKeys(rule, resp.AccessKeys), nil
}

// CreateEventHub creates an event hub in namespace.
func (c *Client) CreateEventHub(ctx context.Context, resourceGroup, namespace, name string, partitionCount int64) (EventHub, error) {
	params := armeventhub.Eventhub{}
	if partitionCount > 0 {
		params.Properties = &armeventhub.Properties{
			PartitionCount: to.Ptr(partitionCount),
		}
	}

	resp, err := c.eventHubs.CreateOrUpdate(ctx, resourceGroup, namespace, name, params, nil)
	if err != nil {
		return EventHub{}, fmt.Errorf("failed to create event hub %s in %s: %w", name, namespace, err)
	}

	return toEventHub(resp.Eventhub), nil
}

// GetEventHub reads an event hub. A hub that does not exist (yet) yields an
// error for which IsNotFound is true.
func (c *Client) GetEventHub(ctx context.Context, resourceGroup, namespace, name string) (EventHub, error) {
	resp, err := c.eventHubs.Get(ctx, resourceGroup, namespace, name, nil)
	if err != nil {
		return EventHub{}, fmt.Errorf("failed to get event hub %s in %s: %w", name, namespace, err)
	}

	return toEventHub(resp.Eventhub), nil
}

// CreateConsumerGroup creates a consumer group with user metadata.
func (c *Client) CreateConsumerGroup(ctx context.Context, resourceGroup, namespace, eventHub, name, userMetadata string) (ConsumerGroup, error) {
	params := armeventhub.ConsumerGroup{
		Properties: &armeventhub.ConsumerGroupProperties{
			UserMetadata: to.Ptr(userMetadata),
		},
	}

	resp, err := c.consumerGroups.CreateOrUpdate(ctx, resourceGroup, namespace, eventHub, name, params, nil)
	if err != nil {
		return ConsumerGroup{}, fmt.Errorf("failed to create consumer group %s on %s: %w", name, eventHub, err)
	}

	return toConsumerGroup(resp.ConsumerGroup), nil
}

func collectRuleNames(ctx context.Context, pager *runtime.Pager[armeventhub.DisasterRecoveryConfigsClientListAuthorizationRulesResponse]) ([]string, error) {
	var names []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, rule := range page.Value {
			if rule == nil || rule.Name == nil {
				continue
			}
			names = append(names, *rule.Name)
		}
	}
	return names, nil
}

func toTags(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		out[k] = to.Ptr(v)
	}
	return out
}
