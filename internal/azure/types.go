package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/eventhub/armeventhub"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// ResourceGroup is a created resource group.
type ResourceGroup struct {
	ID       string
	Name     string
	Location string
}

// Namespace is an Event Hubs namespace.
type Namespace struct {
	ID       string
	Name     string
	Location string
}

// PairingState is the provisioning state of a disaster-recovery alias.
type PairingState string

const (
	PairingStateAccepted  PairingState = "Accepted"
	PairingStateSucceeded PairingState = "Succeeded"
	PairingStateFailed    PairingState = "Failed"
)

// PairingRole is the role a namespace plays in an alias.
type PairingRole string

const (
	PairingRolePrimary   PairingRole = "Primary"
	PairingRoleSecondary PairingRole = "Secondary"
)

// Pairing is a geo-disaster-recovery alias as seen from one namespace.
type Pairing struct {
	ID                           string
	Name                         string
	Namespace                    string
	PartnerNamespace             string
	State                        PairingState
	Role                         PairingRole
	PendingReplicationOperations int64
}

// EventHub is an event hub inside a namespace.
type EventHub struct {
	ID             string
	Name           string
	PartitionCount int64
}

// ConsumerGroup is a consumer group of an event hub.
type ConsumerGroup struct {
	ID           string
	Name         string
	UserMetadata string
}

// AccessKeys are the keys of one alias authorization rule.
type AccessKeys struct {
	RuleName                     string
	AliasPrimaryConnectionString string
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func toResourceGroup(rg armresources.ResourceGroup) ResourceGroup {
	return ResourceGroup{
		ID:       deref(rg.ID),
		Name:     deref(rg.Name),
		Location: deref(rg.Location),
	}
}

func toNamespace(ns armeventhub.EHNamespace) Namespace {
	return Namespace{
		ID:       deref(ns.ID),
		Name:     deref(ns.Name),
		Location: deref(ns.Location),
	}
}

func toPairing(namespace string, dr armeventhub.ArmDisasterRecovery) Pairing {
	p := Pairing{
		ID:        deref(dr.ID),
		Name:      deref(dr.Name),
		Namespace: namespace,
	}
	if props := dr.Properties; props != nil {
		p.PartnerNamespace = deref(props.PartnerNamespace)
		p.State = PairingState(deref(props.ProvisioningState))
		p.Role = PairingRole(deref(props.Role))
		p.PendingReplicationOperations = deref(props.PendingReplicationOperationsCount)
	}
	return p
}

func toEventHub(eh armeventhub.Eventhub) EventHub {
	hub := EventHub{
		ID:   deref(eh.ID),
		Name: deref(eh.Name),
	}
	if eh.Properties != nil {
		hub.PartitionCount = deref(eh.Properties.PartitionCount)
	}
	return hub
}

func toConsumerGroup(cg armeventhub.ConsumerGroup) ConsumerGroup {
	group := ConsumerGroup{
		ID:   deref(cg.ID),
		Name: deref(cg.Name),
	}
	if cg.Properties != nil {
		group.UserMetadata = deref(cg.Properties.UserMetadata)
	}
	return group
}

func toAccessKeys(rule string, keys armeventhub.AccessKeys) AccessKeys {
	return AccessKeys{
		RuleName:                     rule,
		AliasPrimaryConnectionString: deref(keys.AliasPrimaryConnectionString),
	}
}
