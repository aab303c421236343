// Package naming generates and validates the Azure resource names used by a
// geo-recovery run. Names are random per run so repeated runs in the same
// subscription do not collide.
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Default prefixes, one per resource kind.
const (
	PrefixResourceGroup = "rgeh"
	PrefixNamespace     = "ns"
	PrefixAlias         = "geodr"
	PrefixEventHub      = "eh"
)

// Length limits enforced by Azure.
const (
	MaxResourceGroupLength = 90
	MinNamespaceLength     = 6
	MaxNamespaceLength     = 50
	MaxEventHubLength      = 256

	// suffixLength keeps generated names short enough for every kind.
	suffixLength = 12
)

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// Names is the set of resource names used by one run.
type Names struct {
	ResourceGroup      string
	PrimaryNamespace   string
	SecondaryNamespace string
	Alias              string
	EventHub           string
}

// RandomName returns prefix followed by random lowercase hex characters,
// truncated to maxLen.
//
// Example: RandomName("ns", 14) → ns3f9a0c1b7d2e
func RandomName(prefix string, maxLen int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
	name := strings.ToLower(prefix) + suffix
	if maxLen > 0 && len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}

// Generate fills every empty field of pinned with a random name. The primary
// namespace, secondary namespace and event hub names are guaranteed distinct;
// a generated name that collides is drawn again.
func Generate(pinned Names) (Names, error) {
	n := pinned
	taken := make(map[string]bool)
	for _, name := range []string{n.PrimaryNamespace, n.SecondaryNamespace, n.EventHub} {
		if name == "" {
			continue
		}
		if taken[name] {
			return Names{}, fmt.Errorf("name %q is used for more than one of primary namespace, secondary namespace and event hub", name)
		}
		taken[name] = true
	}

	fresh := func(prefix string, maxLen int) string {
		for {
			name := RandomName(prefix, maxLen)
			if !taken[name] {
				taken[name] = true
				return name
			}
		}
	}

	if n.ResourceGroup == "" {
		n.ResourceGroup = RandomName(PrefixResourceGroup, MaxResourceGroupLength)
	}
	if n.PrimaryNamespace == "" {
		n.PrimaryNamespace = fresh(PrefixNamespace, MaxNamespaceLength)
	}
	if n.SecondaryNamespace == "" {
		n.SecondaryNamespace = fresh(PrefixNamespace, MaxNamespaceLength)
	}
	if n.Alias == "" {
		n.Alias = RandomName(PrefixAlias, MaxNamespaceLength)
	}
	if n.EventHub == "" {
		n.EventHub = fresh(PrefixEventHub, MaxEventHubLength)
	}

	if err := Validate(n); err != nil {
		return Names{}, err
	}
	return n, nil
}

// Validate checks every name against the Azure naming rules.
func Validate(n Names) error {
	if n.ResourceGroup == "" || len(n.ResourceGroup) > MaxResourceGroupLength {
		return fmt.Errorf("resource group name must be 1-%d characters, got %q", MaxResourceGroupLength, n.ResourceGroup)
	}
	if err := ValidateNamespaceName(n.PrimaryNamespace); err != nil {
		return fmt.Errorf("primary namespace: %w", err)
	}
	if err := ValidateNamespaceName(n.SecondaryNamespace); err != nil {
		return fmt.Errorf("secondary namespace: %w", err)
	}
	if n.PrimaryNamespace == n.SecondaryNamespace {
		return fmt.Errorf("primary and secondary namespace must differ, both are %q", n.PrimaryNamespace)
	}
	// The alias becomes a DNS name just like a namespace.
	if err := ValidateNamespaceName(n.Alias); err != nil {
		return fmt.Errorf("alias: %w", err)
	}
	if n.Alias == n.PrimaryNamespace || n.Alias == n.SecondaryNamespace {
		return fmt.Errorf("alias %q must differ from both namespace names", n.Alias)
	}
	if n.EventHub == "" || len(n.EventHub) > MaxEventHubLength {
		return fmt.Errorf("event hub name must be 1-%d characters, got %q", MaxEventHubLength, n.EventHub)
	}
	return nil
}

// ValidateNamespaceName enforces the Event Hubs namespace rule: 6-50
// characters, letters, digits and hyphens, starting with a letter and ending
// with a letter or digit.
func ValidateNamespaceName(name string) error {
	if len(name) < MinNamespaceLength || len(name) > MaxNamespaceLength {
		return fmt.Errorf("name must be %d-%d characters, got %d (%q)", MinNamespaceLength, MaxNamespaceLength, len(name), name)
	}
	if !namespacePattern.MatchString(name) {
		return fmt.Errorf("name must start with a letter, end with a letter or digit and contain only lowercase letters, digits or hyphens, got %q", name)
	}
	if strings.HasSuffix(name, "-sb") || strings.HasSuffix(name, "-mgmt") {
		return fmt.Errorf("name must not end with -sb or -mgmt, got %q", name)
	}
	return nil
}
