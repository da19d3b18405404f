package endpoints

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// EndpointSpec is one relation endpoint as declared in metadata.yaml or charmcraft.yaml.
type EndpointSpec struct {
	Interface   string `yaml:"interface"`
	Description string `yaml:"description"`
	Scope       string `yaml:"scope,omitempty"`
	Limit       int    `yaml:"limit,omitempty"`
	Optional    bool   `yaml:"optional,omitempty"`
}

// Metadata holds the parts of a charm's metadata that describe its endpoints.
type Metadata struct {
	Name     string                  `yaml:"name"`
	Summary  string                  `yaml:"summary"`
	Requires map[string]EndpointSpec `yaml:"requires"`
	Provides map[string]EndpointSpec `yaml:"provides"`
	Peers    map[string]EndpointSpec `yaml:"peers"`
}

func ParseMetadata(raw []byte) (*Metadata, error) {
	meta := &Metadata{}
	if err := yaml.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("failed to parse charm metadata: %w", err)
	}
	return meta, nil
}

// Role returns the endpoints declared under role: requires, provides or peers.
func (m *Metadata) Role(role string) map[string]EndpointSpec {
	switch role {
	case RoleRequires:
		return m.Requires
	case RoleProvides:
		return m.Provides
	case RolePeers:
		return m.Peers
	}
	return nil
}

func sortedNames(m map[string]EndpointSpec) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
