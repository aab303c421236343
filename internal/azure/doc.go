// Package azure wraps the Azure Resource Manager SDK clients needed for a
// geo-recovery run: resource groups (armresources) and Event Hubs namespaces,
// event hubs, consumer groups and disaster-recovery configs (armeventhub).
//
// Every method blocks until the remote operation completes; long-running
// operations are polled to completion with PollUntilDone. Results are
// converted to small handle structs (ResourceGroup, Namespace, Pairing, ...)
// so callers never touch SDK pointer soup.
//
// Connection Management:
//
//	client, err := azure.Connect(ctx, subscriptionID)
//	if err != nil {
//	    return err
//	}
//	if err := client.Ping(ctx); err != nil {
//	    return err
//	}
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces for its own Client. Consumers
// (internal/geodr) declare the operations they need and *Client satisfies
// them implicitly, which keeps orchestration testable with plain mocks.
package azure
