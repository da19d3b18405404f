package model

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the user or a safety check stops a command.
var ErrAborted = errors.New("aborted")

type NotFoundError struct {
	Kind  string
	Name  string
	Model string
}

func (e *NotFoundError) Error() string {
	model := e.Model
	if model == "" {
		model = "<the current model>"
	}
	return fmt.Sprintf("%s %q not found in model %q", e.Kind, e.Name, model)
}

type AmbiguousRelationError struct {
	LocalEndpoint  string
	RemoteEndpoint string
	Unit           string
	Matches        int
}

func (e *AmbiguousRelationError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no relations found with remote endpoint=%q and local endpoint=%q in %q",
			e.RemoteEndpoint, e.LocalEndpoint, e.Unit)
	}
	return fmt.Sprintf("multiple relations (%d) found with remote endpoint=%q and local endpoint=%q in %q",
		e.Matches, e.RemoteEndpoint, e.LocalEndpoint, e.Unit)
}

type AgentVersionMismatchError struct {
	ClientVersion string
	AgentVersion  string
}

func (e *AgentVersionMismatchError) Error() string {
	return fmt.Sprintf("juju client version %s does not match controller agent version %s",
		e.ClientVersion, e.AgentVersion)
}
