package network

import (
	"fmt"
	"math/rand"

	"github.com/htm-project/cortical-api/internal/cortical/pool"
	"github.com/htm-project/cortical-api/internal/cortical/synapse"
	"github.com/htm-project/cortical-api/internal/domain/htm"
)

// Network owns every InputSpace and Region in declaration order, its
// own set of object pools (one set per Network; Networks do not share
// pools), and the single seeded pseudo-random stream
// that governs every probabilistic choice the engine makes: two runs
// with the same seed and inputs produce identical state at every step.
type Network struct {
	InputSpaces []*InputSpace
	Regions     []*Region

	Seed int64
	rng  *rand.Rand
	time int

	cells         *pool.Pool[*Cell]
	segments      *pool.Pool[*DistalSegment]
	proximalSyns  *pool.Pool[*ProximalSynapse]
	distalSyns    *pool.Pool[*DistalSynapse]
	updateInfos   *pool.Pool[*SegmentUpdateInfo]
}

func newPools() (*pool.Pool[*Cell], *pool.Pool[*DistalSegment], *pool.Pool[*ProximalSynapse], *pool.Pool[*DistalSynapse], *pool.Pool[*SegmentUpdateInfo]) {
	return pool.New(func() *Cell { return &Cell{} }),
		pool.New(func() *DistalSegment { return &DistalSegment{} }),
		pool.New(func() *ProximalSynapse { return &ProximalSynapse{} }),
		pool.New(func() *DistalSynapse { return &DistalSynapse{} }),
		pool.New(func() *SegmentUpdateInfo { return &SegmentUpdateInfo{} })
}

// NewNetwork builds a Network from a validated NetworkConfig,
// resolving every Region's declared inputs to the InputSpace or
// upstream Region it names.
func NewNetwork(cfg htm.NetworkConfig) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network{Seed: cfg.Seed, rng: rand.New(rand.NewSource(cfg.Seed))}
	n.cells, n.segments, n.proximalSyns, n.distalSyns, n.updateInfos = newPools()

	bySourceID := map[string]ActivitySource{}
	for _, isc := range cfg.InputSpaces {
		is := NewInputSpace(isc.ID, isc.SizeX, isc.SizeY, isc.NumValues)
		n.InputSpaces = append(n.InputSpaces, is)
		bySourceID[isc.ID] = is
	}

	hcBySourceID := map[string]int{}
	for _, isc := range cfg.InputSpaces {
		hcBySourceID[isc.ID] = 1
	}

	for _, rc := range cfg.Regions {
		region, err := n.buildRegion(rc, cfg, bySourceID, hcBySourceID)
		if err != nil {
			return nil, err
		}
		n.Regions = append(n.Regions, region)
		bySourceID[rc.ID] = region
		hcBySourceID[rc.ID] = rc.HypercolumnDiameter
	}

	return n, nil
}

func (n *Network) buildRegion(rc htm.RegionConfig, cfg htm.NetworkConfig, bySourceID map[string]ActivitySource, hcBySourceID map[string]int) (*Region, error) {
	proximalParams := cfg.ProximalSynapseParams
	if rc.ProximalSynapseParams != nil {
		proximalParams = *rc.ProximalSynapseParams
	}
	distalParams := cfg.DistalSynapseParams
	if rc.DistalSynapseParams != nil {
		distalParams = *rc.DistalSynapseParams
	}

	region := &Region{
		ID:                       rc.ID,
		SizeX:                    rc.SizeX,
		SizeY:                    rc.SizeY,
		CellsPerColumn:           rc.CellsPerColumn,
		HypercolumnDiameter:      rc.HypercolumnDiameter,
		PredictionRadius:         rc.PredictionRadius,
		SegmentActivateThreshold: rc.SegmentActivateThreshold,
		InhibitionAutomatic:      rc.Inhibition.Automatic,
		InhibitionRadius:         float64(rc.Inhibition.Radius),
		NewNumberSynapses:        rc.NewNumberSynapses,
		PercentageInputPerColumn: rc.PercentageInputPerColumn,
		PercentageMinOverlap:     rc.PercentageMinOverlap,
		PercentageLocalActivity:  rc.PercentageLocalActivity,
		BoostMax:                 rc.Boost.Max,
		BoostRate:                rc.Boost.Rate,
		SpatialLearning:          rc.SpatialLearning,
		TemporalLearning:         rc.TemporalLearning,
		Boosting:                 rc.Boosting,
		HardcodedSpatial:         rc.HardcodedSpatial,
		OutputColumnActivity:     rc.OutputColumnActivity,
		OutputCellActivity:       rc.OutputCellActivity,
		ProximalParams:           synapse.Params(proximalParams),
		DistalParams:             synapse.Params(distalParams),
		rng:                      n.rng,
		segPool:                  func() *DistalSegment { return n.segments.Get() },
		releaseProximalSyn:       func(s *ProximalSynapse) { n.proximalSyns.Release(s) },
		releaseDistalSyn:         func(s *DistalSynapse) { n.distalSyns.Release(s) },
		releaseSegment:           func(s *DistalSegment) { n.segments.Release(s) },
		releaseUpdateInfo:        func(u *SegmentUpdateInfo) { n.updateInfos.Release(u) },
		newDistalSyn:             func() *DistalSynapse { return n.distalSyns.Get() },
		newUpdateInfo:            func() *SegmentUpdateInfo { return n.updateInfos.Get() },
	}

	var inputs []regionInputSource
	for _, ic := range rc.Inputs {
		src, ok := bySourceID[ic.ID]
		if !ok {
			return nil, fmt.Errorf("region %q: unresolved input %q", rc.ID, ic.ID)
		}
		inputs = append(inputs, regionInputSource{
			Source:              src,
			Radius:              ic.Radius,
			HypercolumnDiameter: hcBySourceID[ic.ID],
		})
	}
	region.inputs = inputs

	if rc.HardcodedSpatial {
		if len(inputs) != 1 {
			return nil, fmt.Errorf("region %q: hardcoded spatial requires exactly one input, got %d", rc.ID, len(inputs))
		}
		sx, sy, _ := inputs[0].Source.Dims()
		if sx != rc.SizeX || sy != rc.SizeY {
			return nil, fmt.Errorf("region %q: hardcoded spatial input is %dx%d, region is %dx%d", rc.ID, sx, sy, rc.SizeX, rc.SizeY)
		}
	}

	region.Columns = make([]*Column, 0, rc.SizeX*rc.SizeY)
	for y := 0; y < rc.SizeY; y++ {
		for x := 0; x < rc.SizeX; x++ {
			pos := Coordinate{X: x, Y: y}
			hyper := Coordinate{X: x / rc.HypercolumnDiameter, Y: y / rc.HypercolumnDiameter}
			col := newColumn(region, pos, hyper, inputs, region.ProximalParams,
				rc.PercentageInputPerColumn, rc.PercentageMinOverlap,
				func() *ProximalSynapse { return n.proximalSyns.Get() }, n.rng)

			minBoostJitter := n.rng.Float64() * 0.01
			col.MinBoost = 1 + minBoostJitter
			col.Boost = col.MinBoost
			if rc.Boost.Max >= 0 {
				col.MaxBoost = rc.Boost.Max - n.rng.Float64()*0.01
			} else {
				col.MaxBoost = -1
			}

			if rc.MinOverlapToReuseSegment.Max > rc.MinOverlapToReuseSegment.Min {
				col.MinOverlapToReuseSegment = rc.MinOverlapToReuseSegment.Min +
					n.rng.Intn(rc.MinOverlapToReuseSegment.Max-rc.MinOverlapToReuseSegment.Min+1)
			} else {
				col.MinOverlapToReuseSegment = rc.MinOverlapToReuseSegment.Min
			}

			col.Cells = make([]*Cell, rc.CellsPerColumn)
			for ci := 0; ci < rc.CellsPerColumn; ci++ {
				cell := n.cells.Get()
				cell.Column = col
				cell.Index = ci
				col.Cells[ci] = cell
			}

			region.Columns = append(region.Columns, col)
		}
	}

	region.recomputeInhibitionRadius()

	return region, nil
}

// Step advances every Region exactly one time step, in declaration
// order, so a downstream Region sees its upstream Regions'
// just-computed activity within the same step.
func (n *Network) Step() {
	n.time++
	for _, r := range n.Regions {
		r.Step()
	}
}

// Time returns the number of steps this Network has executed.
func (n *Network) Time() int { return n.time }

// InputSpaceByID looks up a declared InputSpace by id.
func (n *Network) InputSpaceByID(id string) *InputSpace {
	for _, is := range n.InputSpaces {
		if is.ID == id {
			return is
		}
	}
	return nil
}

// RegionByID looks up a declared Region by id.
func (n *Network) RegionByID(id string) *Region {
	for _, r := range n.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// PoolStats reports live/free counts for every pooled type, exposed
// read-only for diagnostics.
type PoolStats struct {
	Cells, Segments, ProximalSynapses, DistalSynapses, UpdateInfos struct {
		Total, Free int
	}
}

func (n *Network) PoolStats() PoolStats {
	var s PoolStats
	s.Cells.Total, s.Cells.Free = n.cells.Stats()
	s.Segments.Total, s.Segments.Free = n.segments.Stats()
	s.ProximalSynapses.Total, s.ProximalSynapses.Free = n.proximalSyns.Stats()
	s.DistalSynapses.Total, s.DistalSynapses.Free = n.distalSyns.Stats()
	s.UpdateInfos.Total, s.UpdateInfos.Free = n.updateInfos.Stats()
	return s
}
