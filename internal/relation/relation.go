package relation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
)

var jujuKeys = []string{"egress-subnets", "ingress-address", "private-address"}

// Endpoint is `app[/unit]:endpoint`.
type Endpoint struct {
	App  string
	Unit int
	// HasUnit is false when the endpoint names the whole application.
	HasUnit bool
	Name    string
}

func ParseEndpoint(s string) (Endpoint, error) {
	url, name, ok := strings.Cut(s, ":")
	if !ok || url == "" || name == "" || strings.Contains(name, ":") {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: expected <app_name>[/<unit_id>]:<endpoint>", s)
	}
	app, unitID, hasUnit := strings.Cut(url, "/")
	ep := Endpoint{App: app, Name: name, HasUnit: hasUnit}
	if hasUnit {
		id, err := strconv.Atoi(unitID)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid unit id in endpoint %q: %w", s, err)
		}
		ep.Unit = id
	}
	return ep, nil
}

func (e Endpoint) String() string {
	if e.HasUnit {
		return fmt.Sprintf("%s/%d:%s", e.App, e.Unit, e.Name)
	}
	return e.App + ":" + e.Name
}

type Metadata struct {
	Scale     int
	Units     []int
	LeaderID  int
	Interface string
}

// AppRelationData is one side of a relation as seen from the other side.
type AppRelationData struct {
	App        string
	RelationID int
	Meta       Metadata
	Endpoint   string
	AppData    map[string]string
	UnitsData  map[int]map[string]string
}

func (a *AppRelationData) UnitIDs() []int {
	ids := make([]int, 0, len(a.UnitsData))
	for id := range a.UnitsData {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type RelationData struct {
	RelationID int
	Peer       bool
	// Entities holds the requirer then the provider, or the single peer app.
	Entities []*AppRelationData
}

type Options struct {
	Endpoint1    string
	Endpoint2    string
	N            int
	UseN         bool
	ShowJujuKeys bool
	HideEmpty    bool
	Model        string
}

type Service struct {
	status status.StatusService
	units  unit.UnitService
}

func NewService(statusSvc status.StatusService, units unit.UnitService) *Service {
	return &Service{status: statusSvc, units: units}
}

type snapshot struct {
	st  *model.Status
	raw string
}

func (s *Service) snapshot(ctx context.Context, modelName string) (*snapshot, error) {
	req := &model.GetStatusRequest{Model: modelName}
	st, err := s.status.GetStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := s.status.GetRawStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	return &snapshot{st: st, raw: raw}, nil
}

// ErrNoRelations is returned when -n is used on a model without relations.
var ErrNoRelations = errors.New("no relations found")

// resolve turns the options into a pair of endpoints; endpoint2 is empty for peers.
func (s *Service) resolve(snap *snapshot, opts *Options) (string, string, error) {
	if !opts.UseN {
		if opts.Endpoint1 == "" {
			return "", "", fmt.Errorf("invalid usage: provide `n` or (`endpoint1` + `endpoint2`)")
		}
		return opts.Endpoint1, opts.Endpoint2, nil
	}
	if opts.Endpoint1 != "" || opts.Endpoint2 != "" {
		return "", "", fmt.Errorf("invalid usage: provide `n` or (`endpoint1` + `endpoint2`)")
	}

	relations := status.Relations(snap.raw)
	if len(relations) == 0 {
		return "", "", ErrNoRelations
	}
	if opts.N < 0 || opts.N >= len(relations) {
		return "", "", fmt.Errorf("There are only %d relations. Can't show the %dth.", len(relations), opts.N+1)
	}
	row := relations[opts.N]
	if row.IsPeer() {
		return row.Provider, "", nil
	}
	return row.Provider, row.Requirer, nil
}

func (s *Service) Get(ctx context.Context, opts *Options) (*RelationData, error) {
	snap, err := s.snapshot(ctx, opts.Model)
	if err != nil {
		return nil, err
	}
	ep1, ep2, err := s.resolve(snap, opts)
	if err != nil {
		return nil, err
	}

	provider, err := ParseEndpoint(ep1)
	if err != nil {
		return nil, err
	}

	if ep2 == "" {
		data, err := s.content(ctx, snap, provider, provider, true, opts.ShowJujuKeys)
		if err != nil {
			return nil, err
		}
		return &RelationData{RelationID: data.RelationID, Peer: true, Entities: []*AppRelationData{data}}, nil
	}

	requirer, err := ParseEndpoint(ep2)
	if err != nil {
		return nil, err
	}
	providerData, err := s.content(ctx, snap, provider, requirer, false, opts.ShowJujuKeys)
	if err != nil {
		return nil, err
	}
	requirerData, err := s.content(ctx, snap, requirer, provider, false, opts.ShowJujuKeys)
	if err != nil {
		return nil, err
	}
	if providerData.RelationID != requirerData.RelationID {
		log.Warn().Msgf("provider relation id %d not the same as requirer relation id: %d",
			providerData.RelationID, requirerData.RelationID)
	}

	return &RelationData{
		RelationID: requirerData.RelationID,
		Entities:   []*AppRelationData{requirerData, providerData},
	}, nil
}

func (s *Service) metadata(snap *snapshot, ep, other Endpoint) (Metadata, error) {
	app, ok := snap.st.Applications[ep.App]
	if !ok {
		return Metadata{}, &model.NotFoundError{Kind: "application", Name: ep.App, Model: snap.st.Model.Name}
	}
	ids, leader, err := status.UnitIDs(snap.st, ep.App)
	if err != nil {
		return Metadata{}, err
	}
	iface, err := status.Interface(snap.raw, ep.App, ep.Name, other.App, other.Name)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Scale: app.Scale, Units: ids, LeaderID: leader, Interface: iface}, nil
}

// content reads the databags of ep's app and units as seen by a unit of other.
func (s *Service) content(ctx context.Context, snap *snapshot, ep, other Endpoint, peer, showJujuKeys bool) (*AppRelationData, error) {
	meta, err := s.metadata(snap, ep, other)
	if err != nil {
		return nil, err
	}

	units := meta.Units
	if ep.HasUnit {
		units = []int{ep.Unit}
	}

	remoteID := 0
	if other.HasUnit {
		remoteID = other.Unit
	} else if ids, _, err := status.UnitIDs(snap.st, other.App); err == nil && len(ids) > 0 {
		remoteID = ids[0]
	}

	data := &AppRelationData{
		App:        ep.App,
		Meta:       meta,
		Endpoint:   ep.Name,
		UnitsData:  map[int]map[string]string{},
		RelationID: -1,
	}
	for _, id := range units {
		local := fmt.Sprintf("%s/%d", ep.App, id)
		remote := fmt.Sprintf("%s/%d", other.App, remoteID)
		if peer {
			// show-unit reports the unit's own peer data as local-unit
			remote = local
		}

		unitData, appData, rid, err := s.databags(ctx, local, remote, ep.Name, other.Name, peer)
		if err != nil {
			return nil, err
		}
		if data.RelationID >= 0 && data.RelationID != rid {
			return nil, fmt.Errorf("mismatching relation IDs: %d, %d", data.RelationID, rid)
		}
		data.RelationID = rid
		data.AppData = appData

		if !showJujuKeys {
			unitData = purge(unitData)
		}
		data.UnitsData[id] = unitData
	}
	return data, nil
}

func (s *Service) databags(ctx context.Context, local, remote, localEndpoint, remoteEndpoint string, peer bool) (map[string]string, map[string]string, int, error) {
	info, err := s.units.ShowUnit(ctx, remote)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(info.RelationInfo) == 0 {
		return nil, nil, 0, fmt.Errorf("%s has no relations", remote)
	}

	var matches []model.RelationInfo
	for _, r := range info.RelationInfo {
		if !(r.Endpoint == localEndpoint && r.RelatedEndpoint == remoteEndpoint) &&
			!(r.Endpoint == remoteEndpoint && r.RelatedEndpoint == localEndpoint) {
			continue
		}
		if !peer {
			if _, ok := r.RelatedUnits[local]; !ok {
				continue
			}
		}
		matches = append(matches, r)
	}
	if len(matches) != 1 {
		return nil, nil, 0, &model.AmbiguousRelationError{
			LocalEndpoint:  localEndpoint,
			RemoteEndpoint: remoteEndpoint,
			Unit:           local,
			Matches:        len(matches),
		}
	}

	match := matches[0]
	var unitData map[string]string
	if peer {
		if match.LocalUnit != nil {
			unitData = match.LocalUnit.Data
		}
	} else {
		unitData = match.RelatedUnits[local].Data
	}
	return copyBag(unitData), copyBag(match.ApplicationData), match.RelationID, nil
}

func copyBag(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func purge(data map[string]string) map[string]string {
	for _, key := range jujuKeys {
		delete(data, key)
	}
	return data
}
