package model

type ModelsResponse struct {
	CurrentModel string         `json:"current-model"`
	Models       []ModelSummary `json:"models"`
}

type ModelSummary struct {
	Name         string `json:"name"`
	ShortName    string `json:"short-name"`
	UUID         string `json:"model-uuid"`
	Type         string `json:"model-type"`
	Cloud        string `json:"cloud"`
	Region       string `json:"region"`
	Controller   string `json:"controller-name"`
	IsController bool   `json:"is-controller"`
	AgentVersion string `json:"agent-version"`
}

type ModelInfo struct {
	Name         string `json:"name"`
	ShortName    string `json:"short-name"`
	UUID         string `json:"model-uuid"`
	Type         string `json:"model-type"`
	Cloud        string `json:"cloud"`
	AgentVersion string `json:"agent-version"`
}

type ControllersResponse struct {
	CurrentController string                    `json:"current-controller"`
	Controllers       map[string]ControllerInfo `json:"controllers"`
}

type ControllerInfo struct {
	CurrentModel string `json:"current-model"`
	User         string `json:"user"`
	Cloud        string `json:"cloud"`
	AgentVersion string `json:"agent-version"`
}

type DestroyModelRequest struct {
	Name           string
	Force          bool
	NoWait         bool
	DestroyStorage bool
}

type Substrate string

const (
	SubstrateMachine Substrate = "machine"
	SubstrateK8s     Substrate = "k8s"
)

type DebugLogRequest struct {
	Tail    bool
	Replay  bool
	Level   string
	Include []string
	Date    bool
}
