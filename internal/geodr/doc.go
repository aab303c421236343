// Package geodr runs the Event Hubs geo-disaster-recovery walkthrough.
//
// A run provisions a resource group and two namespaces in different regions,
// pairs them under an alias, creates an event hub and a consumer group in the
// primary, waits until the hub is readable from the secondary, reads the
// alias connection strings and finally fails over to the secondary.
//
// Error Handling:
//
// The first failing step ends the sequence. Whatever happened, teardown runs
// afterwards: the pairing is broken unless a failover succeeded, then the
// resource group is deleted. Teardown steps are independent of each other;
// a failure in one is logged and the next one still runs.
//
// Context Support:
//
// Cancelling the context aborts the sequence. Teardown runs on a context
// detached from that cancellation so an interrupted run still removes what it
// created.
//
// Journal:
//
// The run record is written to the journal after every created resource.
// A run that was killed before teardown can be finished with Cleanup.
package geodr
