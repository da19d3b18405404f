package model

type UnitInfo struct {
	Charm        string         `yaml:"charm"`
	Leader       bool           `yaml:"leader"`
	Address      string         `yaml:"address"`
	ProviderID   string         `yaml:"provider-id"`
	Machine      string         `yaml:"machine"`
	OpenedPorts  []string       `yaml:"opened-ports"`
	RelationInfo []RelationInfo `yaml:"relation-info"`
}

type RelationInfo struct {
	RelationID      int                    `yaml:"relation-id"`
	Endpoint        string                 `yaml:"endpoint"`
	CrossModel      bool                   `yaml:"cross-model"`
	RelatedEndpoint string                 `yaml:"related-endpoint"`
	ApplicationData map[string]string      `yaml:"application-data"`
	LocalUnit       *RelatedUnit           `yaml:"local-unit"`
	RelatedUnits    map[string]RelatedUnit `yaml:"related-units"`
}

type RelatedUnit struct {
	InScope bool              `yaml:"in-scope"`
	Data    map[string]string `yaml:"data"`
}

type StatusLogEntry struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type SSHRequest struct {
	Unit      string
	Container string
	Args      []string
	Stdin     []byte
}

// PushRequest describes a file transfer to a unit.
type PushRequest struct {
	Unit       string
	LocalPath  string
	RemotePath string
	// FullPath marks RemotePath as absolute; otherwise it is relative to the charm root.
	FullPath  bool
	Container string
	Substrate Substrate
	Mkdir     bool
	DryRun    bool
}

// RemoteFile addresses a file on a unit.
type RemoteFile struct {
	Unit      string
	Path      string
	FullPath  bool
	Container string
	Substrate Substrate
	DryRun    bool
}

type ApplicationInfo struct {
	Charm            string            `json:"charm"`
	Base             Base              `json:"base"`
	Principal        bool              `json:"principal"`
	Exposed          bool              `json:"exposed"`
	Remote           bool              `json:"remote"`
	Life             string            `json:"life"`
	EndpointBindings map[string]string `json:"endpoint-bindings"`
}
