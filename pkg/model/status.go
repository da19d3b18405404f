package model

import (
	"encoding/json"
	"fmt"
)

type GetStatusRequest struct {
	App   string
	Model string
}

type Status struct {
	Model        ModelStatus                  `json:"model"`
	Machines     map[string]MachineStatus     `json:"machines"`
	Applications map[string]ApplicationStatus `json:"applications"`
}

type ModelStatus struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Controller string `json:"controller"`
	Cloud      string `json:"cloud"`
	Region     string `json:"region"`
	Version    string `json:"version"`
}

type MachineStatus struct {
	DNSName    string `json:"dns-name"`
	InstanceID string `json:"instance-id"`
	Base       Base   `json:"base"`
}

type Base struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
}

type StatusInfo struct {
	Current string `json:"current"`
	Message string `json:"message"`
	Since   string `json:"since"`
}

type ApplicationStatus struct {
	Charm            string                 `json:"charm"`
	CharmName        string                 `json:"charm-name"`
	CharmChannel     string                 `json:"charm-channel"`
	CharmRev         int                    `json:"charm-rev"`
	Scale            int                    `json:"scale"`
	Exposed          bool                   `json:"exposed"`
	Status           StatusInfo             `json:"application-status"`
	Units            map[string]UnitStatus  `json:"units"`
	SubordinateTo    []string               `json:"subordinate-to"`
	Relations        map[string]RelatedApps `json:"relations"`
	EndpointBindings map[string]string      `json:"endpoint-bindings"`
}

type UnitStatus struct {
	WorkloadStatus StatusInfo            `json:"workload-status"`
	JujuStatus     StatusInfo            `json:"juju-status"`
	Leader         bool                  `json:"leader"`
	Machine        string                `json:"machine"`
	Address        string                `json:"address"`
	ProviderID     string                `json:"provider-id"`
	Subordinates   map[string]UnitStatus `json:"subordinates"`
}

// RelatedApp is one remote end of an endpoint as reported by juju status.
type RelatedApp struct {
	RelatedApplication string `json:"related-application"`
	Interface          string `json:"interface"`
	Scope              string `json:"scope"`
}

// RelatedApps accepts both the juju 3 object form and the juju 2 list of app names.
type RelatedApps []RelatedApp

func (r *RelatedApps) UnmarshalJSON(data []byte) error {
	var objs []RelatedApp
	if err := json.Unmarshal(data, &objs); err == nil {
		*r = objs
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("unrecognized relations format: %s", string(data))
	}
	out := make([]RelatedApp, 0, len(names))
	for _, name := range names {
		out = append(out, RelatedApp{RelatedApplication: name})
	}
	*r = out
	return nil
}

func (r RelatedApps) Names() []string {
	names := make([]string, 0, len(r))
	for _, app := range r {
		names = append(names, app.RelatedApplication)
	}
	return names
}

// RelationRow is a row of the `Relation provider` section in the tabular status.
type RelationRow struct {
	Provider  string
	Requirer  string
	Interface string
	Type      string
	Message   string
}

func (r RelationRow) IsPeer() bool {
	return r.Type == "peer"
}
