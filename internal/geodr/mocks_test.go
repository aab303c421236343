package geodr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/journal"
	"github.com/jbweber/geodr/internal/propagation"
)

const testSubscription = "/subscriptions/00000000-0000-0000-0000-000000000000"

// mockClient is a mock implementation of the managementClient interface.
// Every call is appended to calls as "Method:arg" so tests can check order.
type mockClient struct {
	mu sync.Mutex

	// Configurable behavior
	resourceGroupExistsFunc func(name string) (bool, error)
	createResourceGroupFunc func(name, location string) (azure.ResourceGroup, error)
	deleteResourceGroupFunc func(name string) error
	createNamespaceFunc     func(name, location, sku string) (azure.Namespace, error)
	createPairingFunc       func(namespace, alias, partnerID string) (azure.Pairing, error)
	getPairingFunc          func(namespace, alias string) (azure.Pairing, error)
	breakPairingFunc        func(namespace, alias string) error
	failOverFunc            func(namespace, alias string) error
	listPairingRulesFunc    func(alias string) ([]string, error)
	getPairingKeysFunc      func(alias, rule string) (azure.AccessKeys, error)
	createEventHubFunc      func(namespace, name string, partitions int64) (azure.EventHub, error)
	getEventHubFunc         func(namespace, name string) (azure.EventHub, error)
	createConsumerGroupFunc func(eventHub, name, userMetadata string) (azure.ConsumerGroup, error)

	// Call tracking
	calls []string
	tags  map[string]string
}

// newMockClient returns a client on which every call succeeds.
func newMockClient() *mockClient {
	m := &mockClient{}

	m.resourceGroupExistsFunc = func(string) (bool, error) { return false, nil }
	m.createResourceGroupFunc = func(name, location string) (azure.ResourceGroup, error) {
		return azure.ResourceGroup{ID: testSubscription + "/resourceGroups/" + name, Name: name, Location: location}, nil
	}
	m.deleteResourceGroupFunc = func(string) error { return nil }
	m.createNamespaceFunc = func(name, location, _ string) (azure.Namespace, error) {
		return azure.Namespace{ID: nsID(name), Name: name, Location: location}, nil
	}
	m.createPairingFunc = func(namespace, alias, partnerID string) (azure.Pairing, error) {
		return azure.Pairing{
			ID:               nsID(namespace) + "/disasterRecoveryConfigs/" + alias,
			Name:             alias,
			Namespace:        namespace,
			PartnerNamespace: partnerID,
			State:            azure.PairingStateAccepted,
			Role:             azure.PairingRolePrimary,
		}, nil
	}
	m.getPairingFunc = func(namespace, alias string) (azure.Pairing, error) {
		return azure.Pairing{Name: alias, Namespace: namespace, State: azure.PairingStateSucceeded, Role: azure.PairingRolePrimary}, nil
	}
	m.breakPairingFunc = func(string, string) error { return nil }
	m.failOverFunc = func(string, string) error { return nil }
	m.listPairingRulesFunc = func(string) ([]string, error) { return []string{"RootManageSharedAccessKey"}, nil }
	m.getPairingKeysFunc = func(alias, rule string) (azure.AccessKeys, error) {
		return azure.AccessKeys{
			RuleName:                     rule,
			AliasPrimaryConnectionString: "Endpoint=sb://" + alias + ".servicebus.windows.net/;SharedAccessKeyName=" + rule + ";SharedAccessKey=k=;Alias=" + alias,
		}, nil
	}
	m.createEventHubFunc = func(namespace, name string, partitions int64) (azure.EventHub, error) {
		return azure.EventHub{ID: nsID(namespace) + "/eventhubs/" + name, Name: name, PartitionCount: partitions}, nil
	}
	m.getEventHubFunc = func(namespace, name string) (azure.EventHub, error) {
		return azure.EventHub{ID: nsID(namespace) + "/eventhubs/" + name, Name: name, PartitionCount: 4}, nil
	}
	m.createConsumerGroupFunc = func(eventHub, name, userMetadata string) (azure.ConsumerGroup, error) {
		return azure.ConsumerGroup{ID: "/eventhubs/" + eventHub + "/consumergroups/" + name, Name: name, UserMetadata: userMetadata}, nil
	}

	return m
}

func nsID(namespace string) string {
	return testSubscription + "/providers/Microsoft.EventHub/namespaces/" + namespace
}

func (m *mockClient) track(method string, args ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method+":"+strings.Join(args, ","))
}

// callsTo returns the tracked calls of one method.
func (m *mockClient) callsTo(method string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if strings.HasPrefix(c, method+":") {
			out = append(out, c)
		}
	}
	return out
}

// indexOf returns the position of the first call to method, or -1.
func (m *mockClient) indexOf(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.calls {
		if strings.HasPrefix(c, method+":") {
			return i
		}
	}
	return -1
}

func (m *mockClient) ResourceGroupExists(_ context.Context, name string) (bool, error) {
	m.track("ResourceGroupExists", name)
	return m.resourceGroupExistsFunc(name)
}

func (m *mockClient) CreateResourceGroup(_ context.Context, name, location string, tags map[string]string) (azure.ResourceGroup, error) {
	m.track("CreateResourceGroup", name, location)
	m.tags = tags
	return m.createResourceGroupFunc(name, location)
}

func (m *mockClient) DeleteResourceGroup(_ context.Context, name string) error {
	m.track("DeleteResourceGroup", name)
	return m.deleteResourceGroupFunc(name)
}

func (m *mockClient) CreateNamespace(_ context.Context, _, name, location, sku string) (azure.Namespace, error) {
	m.track("CreateNamespace", name, location, sku)
	return m.createNamespaceFunc(name, location, sku)
}

func (m *mockClient) CreatePairing(_ context.Context, _, namespace, alias, partnerID string) (azure.Pairing, error) {
	m.track("CreatePairing", namespace, alias, partnerID)
	return m.createPairingFunc(namespace, alias, partnerID)
}

func (m *mockClient) GetPairing(_ context.Context, _, namespace, alias string) (azure.Pairing, error) {
	m.track("GetPairing", namespace, alias)
	return m.getPairingFunc(namespace, alias)
}

func (m *mockClient) BreakPairing(_ context.Context, _, namespace, alias string) error {
	m.track("BreakPairing", namespace, alias)
	return m.breakPairingFunc(namespace, alias)
}

func (m *mockClient) FailOver(_ context.Context, _, namespace, alias string) error {
	m.track("FailOver", namespace, alias)
	return m.failOverFunc(namespace, alias)
}

func (m *mockClient) ListPairingRules(_ context.Context, _, namespace, alias string) ([]string, error) {
	m.track("ListPairingRules", namespace, alias)
	return m.listPairingRulesFunc(alias)
}

func (m *mockClient) GetPairingKeys(_ context.Context, _, namespace, alias, rule string) (azure.AccessKeys, error) {
	m.track("GetPairingKeys", namespace, alias, rule)
	return m.getPairingKeysFunc(alias, rule)
}

func (m *mockClient) CreateEventHub(_ context.Context, _, namespace, name string, partitions int64) (azure.EventHub, error) {
	m.track("CreateEventHub", namespace, name)
	return m.createEventHubFunc(namespace, name, partitions)
}

func (m *mockClient) GetEventHub(_ context.Context, _, namespace, name string) (azure.EventHub, error) {
	m.track("GetEventHub", namespace, name)
	return m.getEventHubFunc(namespace, name)
}

func (m *mockClient) CreateConsumerGroup(_ context.Context, _, _, eventHub, name, userMetadata string) (azure.ConsumerGroup, error) {
	m.track("CreateConsumerGroup", eventHub, name, userMetadata)
	return m.createConsumerGroupFunc(eventHub, name, userMetadata)
}

// stubWaiter calls the check up to attempts times without sleeping.
type stubWaiter struct {
	attempts int
	calls    int
}

func (w *stubWaiter) Wait(ctx context.Context, check propagation.Check) error {
	w.calls++
	for i := 0; i < w.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts", propagation.ErrNotPropagated, w.attempts)
}

// failingJournal wraps a real store and fails every Save.
type failingJournal struct {
	*journal.Store
}

func (failingJournal) Save(*v1alpha1.GeoRecoveryRun) error {
	return fmt.Errorf("disk full")
}

func notFound() error {
	return &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "NotFound"}
}
