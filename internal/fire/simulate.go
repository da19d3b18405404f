package fire

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/unit"
)

var relationEventSuffixes = []string{
	"-relation-changed",
	"-relation-created",
	"-relation-joined",
	"-relation-broken",
	"-relation-departed",
}

// RelationEndpoint returns the endpoint a relation event is about.
func RelationEndpoint(event string) (string, bool) {
	for _, suffix := range relationEventSuffixes {
		if endpoint, ok := strings.CutSuffix(event, suffix); ok && endpoint != "" {
			return endpoint, true
		}
	}
	return "", false
}

// Simulator triggers an event on a unit by calling its dispatch script over ssh.
type Simulator struct {
	units      unit.UnitService
	execHelper string
}

// NewSimulator takes the in-unit exec helper, juju-exec or juju-run depending on the juju version.
func NewSimulator(units unit.UnitService, execHelper string) *Simulator {
	return &Simulator{units: units, execHelper: execHelper}
}

func (s *Simulator) relationID(ctx context.Context, unitName, endpoint string) (int, error) {
	info, err := s.units.ShowUnit(ctx, unitName)
	if err != nil {
		return 0, err
	}
	for _, binding := range info.RelationInfo {
		if binding.Endpoint == endpoint {
			return binding.RelationID, nil
		}
	}
	return 0, fmt.Errorf("unit %s has no active bindings to %s", unitName, endpoint)
}

// Env returns the dispatch environment for event, in order.
func (s *Simulator) Env(ctx context.Context, unitName, event string) ([]string, error) {
	env := []string{"JUJU_DISPATCH_PATH=hooks/" + event}
	if endpoint, ok := RelationEndpoint(event); ok {
		id, err := s.relationID(ctx, unitName, endpoint)
		if err != nil {
			return nil, err
		}
		env = append(env, "JUJU_RELATION="+endpoint, fmt.Sprintf("JUJU_RELATION_ID=%d", id))
	}
	return env, nil
}

// Simulate runs event on unitName and returns the dispatch output.
func (s *Simulator) Simulate(ctx context.Context, unitName, event string) (string, error) {
	env, err := s.Env(ctx, unitName, event)
	if err != nil {
		return "", err
	}
	args := append([]string{"/usr/bin/" + s.execHelper, "-u", unitName}, env...)
	args = append(args, "./dispatch")

	req := &model.SSHRequest{Unit: unitName, Args: args}
	log.Info().Msgf("juju ssh %s %s", unitName, strings.Join(args, " "))
	return s.units.SSH(ctx, req)
}
