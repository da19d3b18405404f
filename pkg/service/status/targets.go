package status

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/types"
)

type UnitPredicate func(name string, unit model.UnitStatus) bool

func IsLeader(_ string, unit model.UnitStatus) bool {
	return unit.Leader
}

// Units lists the units of app. Subordinates get one unit per principal unit;
// they share the principal's machine and leadership flag.
func Units(status *model.Status, app string, predicate UnitPredicate) ([]types.Target, error) {
	appStatus, ok := status.Applications[app]
	if !ok {
		return nil, &model.NotFoundError{Kind: "application", Name: app, Model: status.Model.Name}
	}

	var units []types.Target
	if len(appStatus.SubordinateTo) > 0 {
		for _, principal := range appStatus.SubordinateTo {
			principalStatus, ok := status.Applications[principal]
			if !ok {
				continue
			}
			for unitName, unit := range principalStatus.Units {
				if len(unit.Subordinates) == 0 {
					// the subordinate unit ids are not known yet; mirror the principal's
					if predicate != nil && !predicate(unitName, unit) {
						continue
					}
					if t, ok := toTarget(app+"/"+unitID(unitName), unit, unit.Machine); ok {
						units = append(units, t)
					}
					continue
				}
				for subName, sub := range unit.Subordinates {
					if types.AppName(subName) != app {
						continue
					}
					if predicate != nil && !predicate(subName, sub) {
						continue
					}
					if t, ok := toTarget(subName, sub, unit.Machine); ok {
						units = append(units, t)
					}
				}
			}
		}
	} else {
		for unitName, unit := range appStatus.Units {
			if predicate != nil && !predicate(unitName, unit) {
				continue
			}
			if t, ok := toTarget(unitName, unit, unit.Machine); ok {
				units = append(units, t)
			}
		}
	}

	sortTargets(units)
	return units, nil
}

func unitID(name string) string {
	_, id, _ := strings.Cut(name, "/")
	return id
}

func toTarget(name string, unit model.UnitStatus, machine string) (types.Target, bool) {
	t, err := types.ParseTarget(name)
	if err != nil {
		log.Warn().Err(err).Msgf("skipping unit %s", name)
		return types.Target{}, false
	}
	t.Leader = unit.Leader
	t.MachineID = machine
	return t, true
}

func sortTargets(ts []types.Target) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].App != ts[j].App {
			return ts[i].App < ts[j].App
		}
		return ts[i].Unit < ts[j].Unit
	})
}

// AllUnits lists every unit in the model.
func AllUnits(status *model.Status) []types.Target {
	var all []types.Target
	for app := range status.Applications {
		units, err := Units(status, app, nil)
		if err != nil {
			continue
		}
		all = append(all, units...)
	}
	sortTargets(all)
	return all
}

// Leader returns the leader unit of app, if any.
func Leader(status *model.Status, app string) (*types.Target, error) {
	leaders, err := Units(status, app, IsLeader)
	if err != nil {
		return nil, err
	}
	if len(leaders) == 0 {
		return nil, nil
	}
	return &leaders[0], nil
}

// ParseTarget resolves a target expression:
//
//   - "*": every unit in the model
//   - "app/N": that unit
//   - "app/leader" or "app/*": the leader of app
//   - "app": every unit of app
func ParseTarget(status *model.Status, expr string) ([]types.Target, error) {
	if expr == "*" {
		return AllUnits(status), nil
	}

	if prefix, suffix, ok := cutLast(expr, "/"); ok {
		if suffix == "*" || suffix == "leader" {
			leader, err := Leader(status, prefix)
			if err != nil {
				return nil, err
			}
			if leader == nil {
				return nil, nil
			}
			return []types.Target{*leader}, nil
		}
		t, err := types.ParseTarget(expr)
		if err != nil {
			return nil, err
		}
		if app, ok := status.Applications[t.App]; ok {
			if u, ok := app.Units[t.UnitName()]; ok {
				t.Leader = u.Leader
				t.MachineID = u.Machine
			}
		}
		return []types.Target{t}, nil
	}

	return Units(status, expr, nil)
}

// ParseTargets resolves each expression and de-duplicates the result.
func ParseTargets(status *model.Status, exprs []string) ([]types.Target, error) {
	seen := map[string]bool{}
	var out []types.Target
	for _, expr := range exprs {
		ts, err := ParseTarget(status, strings.TrimSpace(expr))
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			if seen[t.UnitName()] {
				continue
			}
			seen[t.UnitName()] = true
			out = append(out, t)
		}
	}
	sortTargets(out)
	return out, nil
}

func cutLast(s, sep string) (string, string, bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// UnitIDs lists the numeric ids of app's units, and the leader id.
func UnitIDs(status *model.Status, app string) ([]int, int, error) {
	appStatus, ok := status.Applications[app]
	if !ok {
		return nil, 0, &model.NotFoundError{Kind: "application", Name: app, Model: status.Model.Name}
	}
	leader := 0
	var ids []int
	for name, unit := range appStatus.Units {
		id, err := strconv.Atoi(unitID(name))
		if err != nil {
			continue
		}
		if unit.Leader {
			leader = id
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, leader, nil
}
