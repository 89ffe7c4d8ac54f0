package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/htm-project/cortical-api/internal/cortical/network"
	"github.com/htm-project/cortical-api/internal/domain/htm"
)

// NetworkService owns every live HTM Network instance created through the
// REST surface: a thin JSON-over-HTTP adapter around the learning core.
// The engine itself (internal/cortical/network) stays a pure Go library
// with no knowledge of gin, uuid, or HTTP at all.
type NetworkService struct {
	mu           sync.RWMutex
	instances    map[string]*network.Network
	maxNetworks  int
	stepDeadline time.Duration
}

// NewNetworkService creates an empty registry of Network instances, capped
// at maxNetworks live instances at once (maxNetworks <= 0 means unbounded),
// with each Step call bounded by stepDeadline (<= 0 means unbounded).
func NewNetworkService(maxNetworks int, stepDeadline time.Duration) *NetworkService {
	return &NetworkService{
		instances:    make(map[string]*network.Network),
		maxNetworks:  maxNetworks,
		stepDeadline: stepDeadline,
	}
}

// CreateNetwork validates and builds a Network from cfg, assigns it a new
// instance id, and returns that id. It refuses to create another instance
// once the registry holds maxNetworks live ones.
func (s *NetworkService) CreateNetwork(cfg htm.NetworkConfig) (string, error) {
	n, err := network.NewNetwork(cfg)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxNetworks > 0 && len(s.instances) >= s.maxNetworks {
		return "", htm.NewPoolingError(htm.PoolingErrorInvalidInput,
			fmt.Sprintf("at capacity: %d live networks already registered", s.maxNetworks))
	}

	id := uuid.NewString()
	s.instances[id] = n
	return id, nil
}

func (s *NetworkService) lookup(id string) (*network.Network, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.instances[id]
	if !ok {
		return nil, htm.NewPoolingErrorWithField(htm.PoolingErrorInvalidInput,
			fmt.Sprintf("no network with id %q", id), "id")
	}
	return n, nil
}

// Step advances the named Network exactly one time step, invoking each
// Region in declaration order, and returns the new time counter. A
// Step that runs
// longer than stepDeadline is reported as an error rather than blocking the
// caller forever; the Network itself keeps running to completion in the
// background, since a step is not cancellable mid-flight.
func (s *NetworkService) Step(id string) (int, error) {
	n, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	if s.stepDeadline <= 0 {
		n.Step()
		return n.Time(), nil
	}

	done := make(chan struct{})
	go func() {
		n.Step()
		close(done)
	}()

	select {
	case <-done:
		return n.Time(), nil
	case <-time.After(s.stepDeadline):
		return 0, htm.NewPoolingError(htm.PoolingErrorInvalidInput,
			fmt.Sprintf("step exceeded deadline of %s", s.stepDeadline))
	}
}

// SetInput overwrites the named InputSpace's active bitmap ahead of the
// next Step call.
func (s *NetworkService) SetInput(networkID, inputSpaceID string, active []network.Coordinate) error {
	n, err := s.lookup(networkID)
	if err != nil {
		return err
	}
	is := n.InputSpaceByID(inputSpaceID)
	if is == nil {
		return htm.NewPoolingErrorWithField(htm.PoolingErrorInvalidInput,
			fmt.Sprintf("no input space with id %q", inputSpaceID), "input_space_id")
	}
	is.SetActive(active)
	return nil
}

// RegionSnapshot builds a read-only diagnostic view of one Region at its
// current step: per-column spatial-pooling state and per-cell
// temporal-pooling state.
func (s *NetworkService) RegionSnapshot(networkID, regionID string) (*htm.RegionSnapshot, error) {
	n, err := s.lookup(networkID)
	if err != nil {
		return nil, err
	}
	r := n.RegionByID(regionID)
	if r == nil {
		return nil, htm.NewPoolingErrorWithField(htm.PoolingErrorInvalidInput,
			fmt.Sprintf("no region with id %q", regionID), "region_id")
	}
	return network.BuildRegionSnapshot(r), nil
}

// PoolStats reports the named Network's own object-pool occupancy;
// live objects per type = total - free.
func (s *NetworkService) PoolStats(networkID string) (*htm.PoolStatsSnapshot, error) {
	n, err := s.lookup(networkID)
	if err != nil {
		return nil, err
	}
	raw := n.PoolStats()
	toStats := func(total, free int) htm.PoolTypeStats {
		return htm.PoolTypeStats{Total: total, Free: free, Live: total - free}
	}
	return &htm.PoolStatsSnapshot{
		Cells:            toStats(raw.Cells.Total, raw.Cells.Free),
		Segments:         toStats(raw.Segments.Total, raw.Segments.Free),
		ProximalSynapses: toStats(raw.ProximalSynapses.Total, raw.ProximalSynapses.Free),
		DistalSynapses:   toStats(raw.DistalSynapses.Total, raw.DistalSynapses.Free),
		UpdateInfos:      toStats(raw.UpdateInfos.Total, raw.UpdateInfos.Free),
	}, nil
}

// Remove discards a Network instance.
func (s *NetworkService) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, id)
}
