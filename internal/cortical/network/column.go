package network

import (
	"math"
	"math/rand"

	"github.com/htm-project/cortical-api/internal/cortical/spatial"
	"github.com/htm-project/cortical-api/internal/cortical/synapse"
	"github.com/htm-project/cortical-api/internal/cortical/temporal"
)

// Column is a vertical stack of Cells sharing one feed-forward
// receptive field.
type Column struct {
	Region   *Region
	Position Coordinate // (x,y) within the Region's column grid
	Hyper    Coordinate // (x,y) of the hypercolumn this column belongs to

	Proximal *ProximalSegment
	Cells    []*Cell

	MinOverlap               int
	MinOverlapToReuseSegment int
	DesiredLocalActivity     int

	Boost    float64
	MinBoost float64
	MaxBoost float64 // -1 means unlimited

	ActiveDutyCycleSlow float64 // alpha = 0.005
	ActiveDutyCycleFast float64 // alpha = 0.008
	OverlapDutyCycle    float64 // alpha = 0.005
	MaxDutyCycle        float64

	Overlap   float64
	Active    bool
	WasActive bool
	Inhibited bool

	boostedLastStep bool
}

// regionInputSource describes one upstream ActivitySource a Region
// draws proximal receptive fields from.
type regionInputSource struct {
	Source              ActivitySource
	Radius              int // hypercolumn radius, -1 = unrestricted
	HypercolumnDiameter int // 1 for an InputSpace; the source Region's own diameter otherwise
}

// newColumn allocates a Column and samples its proximal receptive
// field from the given inputs.
func newColumn(region *Region, pos, hyper Coordinate, inputs []regionInputSource, params synapse.Params, pctInputPerColumn, pctMinOverlap float64, newSynapse func() *ProximalSynapse, rng *rand.Rand) *Column {
	col := &Column{
		Region:   region,
		Position: pos,
		Hyper:    hyper,
		Proximal: &ProximalSegment{},
		Boost:    1.0,
	}

	minOverlapSum := 0.0
	for _, in := range inputs {
		picked := sampleReceptiveField(col, in, pctInputPerColumn, rng)
		for _, pt := range picked {
			perm := spatial.SampleNormalPermanence(rng, params.ConnectedPermanence, params.PermanenceIncrease)
			syn := newSynapse()
			syn.Synapse = synapse.New(perm, params.ConnectedPermanence)
			syn.Source = in.Source
			syn.Coordinate = pt.coord
			syn.Distance = pt.distance
			col.Proximal.Synapses = append(col.Proximal.Synapses, syn)
		}
		minOverlapSum += math.Ceil(pctMinOverlap / 100 * float64(len(picked)))
	}

	col.MinOverlap = int(minOverlapSum)
	if col.MinOverlap < 1 {
		col.MinOverlap = 1
	}

	return col
}

type receptiveFieldPoint struct {
	coord    Coordinate
	distance float64
}

// sampleReceptiveField maps the column's hypercolumn into the
// source's hypercolumn grid, restricts candidates to a radius,
// weighted-samples without replacement, and records each pick's
// Euclidean distance back to the column's own Region-coordinate
// position.
func sampleReceptiveField(col *Column, in regionInputSource, pctInputPerColumn float64, rng *rand.Rand) []receptiveFieldPoint {
	sizeX, sizeY, numValues := in.Source.Dims()
	hcDiam := in.HypercolumnDiameter
	if hcDiam <= 0 {
		hcDiam = 1
	}
	hcSizeX := sizeX / hcDiam
	hcSizeY := sizeY / hcDiam
	if hcSizeX < 1 {
		hcSizeX = 1
	}
	if hcSizeY < 1 {
		hcSizeY = 1
	}

	regionHcSizeX := col.Region.SizeX / col.Region.HypercolumnDiameter
	regionHcSizeY := col.Region.SizeY / col.Region.HypercolumnDiameter

	centerHcX := proportional(col.Hyper.X, regionHcSizeX, hcSizeX)
	centerHcY := proportional(col.Hyper.Y, regionHcSizeY, hcSizeY)

	minHcX, maxHcX := 0, hcSizeX-1
	minHcY, maxHcY := 0, hcSizeY-1
	if in.Radius >= 0 {
		minHcX = maxInt(0, centerHcX-in.Radius)
		maxHcX = minInt(hcSizeX-1, centerHcX+in.Radius)
		minHcY = maxInt(0, centerHcY-in.Radius)
		maxHcY = minInt(hcSizeY-1, centerHcY+in.Radius)
	}

	var points []Coordinate
	for hcy := minHcY; hcy <= maxHcY; hcy++ {
		for hcx := minHcX; hcx <= maxHcX; hcx++ {
			for dy := 0; dy < hcDiam; dy++ {
				for dx := 0; dx < hcDiam; dx++ {
					x := hcx*hcDiam + dx
					y := hcy*hcDiam + dy
					if x >= sizeX || y >= sizeY {
						continue
					}
					for v := 0; v < numValues; v++ {
						points = append(points, Coordinate{X: x, Y: y, I: v})
					}
				}
			}
		}
	}

	weights := make([]float64, len(points))
	for i := range weights {
		weights[i] = 1
	}

	count := int(math.Round(pctInputPerColumn / 100 * float64(len(points))))
	picked := spatial.SampleWithoutReplacement(rng, weights, count)

	out := make([]receptiveFieldPoint, 0, len(picked))
	for _, idx := range picked {
		c := points[idx]
		regionX := proportional(c.X, sizeX, col.Region.SizeX)
		regionY := proportional(c.Y, sizeY, col.Region.SizeY)
		dx := float64(regionX - col.Position.X)
		dy := float64(regionY - col.Position.Y)
		out = append(out, receptiveFieldPoint{coord: c, distance: math.Sqrt(dx*dx + dy*dy)})
	}
	return out
}

func proportional(v, from, to int) int {
	if from <= 0 {
		return 0
	}
	return v * to / from
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ComputeOverlap processes the proximal segment and derives the
// column's overlap score: minOverlap gating, the
// inactive-well-connected penalty, then boost.
func (c *Column) ComputeOverlap(params synapse.Params) {
	c.Proximal.Process(params.InitialPermanence)

	raw := float64(c.Proximal.ActiveConnectedCount)
	if raw < float64(c.MinOverlap) {
		c.Overlap = 0
		return
	}

	denom := float64(c.Proximal.ActiveConnectedCount + c.Proximal.InactiveWellConnectedCount)
	penalty := 1.0
	if denom > 0 {
		penalty = raw / denom
	}
	c.Overlap = raw * penalty * c.Boost
}

// AdaptPermanences runs spatial learning for this (active) column.
func (c *Column) AdaptPermanences(params synapse.Params) {
	c.Proximal.AdaptPermanences(params)
}

// UpdateDutyCycles advances the three EMAs this column tracks: slow
// and fast post-inhibition activity, and boost-normalized overlap
// reaching minOverlap.
func (c *Column) UpdateDutyCycles(minOverlap int) {
	c.ActiveDutyCycleSlow = spatial.UpdateEMA(c.ActiveDutyCycleSlow, 0.005, c.Active)
	c.ActiveDutyCycleFast = spatial.UpdateEMA(c.ActiveDutyCycleFast, 0.008, c.Active)

	reachedOverlap := c.Overlap/maxFloat(c.Boost, 1e-9) >= float64(minOverlap)
	c.OverlapDutyCycle = spatial.UpdateEMA(c.OverlapDutyCycle, 0.005, reachedOverlap)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ApplyBoosting runs the homeostatic boost rules. A column whose
// slow active duty cycle falls below 1% of its neighborhood maximum
// has its boost raised each step; the first step of each such episode
// first snaps every connected proximal permanence down to exactly
// connectedPerm so synapses from inactive inputs are easy to lose and
// the column can come to represent a smaller subpattern. Once boost is
// pinned at MaxBoost, unconnected synapse permanences are nudged
// toward connectedPerm instead.
func (c *Column) ApplyBoosting(boostRate float64, connectedPerm float64) {
	if c.ActiveDutyCycleSlow < 0.01*c.MaxDutyCycle {
		if c.MaxBoost >= 0 && c.Boost >= c.MaxBoost {
			for _, syn := range c.Proximal.Synapses {
				syn.NudgeTowardConnected(boostRate, connectedPerm)
			}
			return
		}

		if !c.boostedLastStep {
			for _, syn := range c.Proximal.Synapses {
				syn.SetConnectedThreshold(connectedPerm)
			}
		}
		c.Boost += boostRate
		if c.MaxBoost >= 0 && c.Boost > c.MaxBoost {
			c.Boost = c.MaxBoost
		}
		c.boostedLastStep = true
		return
	}

	c.boostedLastStep = false
	if c.Boost > c.MinBoost && c.ActiveDutyCycleSlow > 0.65*c.MaxDutyCycle && c.ActiveDutyCycleFast > 0.65*c.MaxDutyCycle {
		c.Boost -= boostRate
		if c.Boost < c.MinBoost {
			c.Boost = c.MinBoost
		}
	}
}

// BestMatchingCell finds the Cell (and the Segment) whose best distal
// segment for numPredictionSteps matches most active synapses.
// usePrevious selects whether the segment's previous-step or
// current-step active-synapse snapshot is consulted. When no segment
// qualifies anywhere, the returned segment is nil, signaling that a
// new one should be created.
func (c *Column) BestMatchingCell(numPredictionSteps int, usePrevious bool, rng *rand.Rand) (*Cell, *DistalSegment) {
	var bestCell *Cell
	var bestSegment *DistalSegment
	bestCount := 0

	for _, cell := range c.Cells {
		cellBest, count := cell.bestSegmentFor(numPredictionSteps, usePrevious)
		if cellBest != nil && count > bestCount {
			bestCount = count
			bestCell = cell
			bestSegment = cellBest
		}
	}

	if bestCell != nil {
		return bestCell, bestSegment
	}

	// No segment anywhere qualifies: pick the cell with the fewest
	// total segments, breaking ties uniformly at random via 1-in-k
	// reservoir selection.
	fewest := -1
	seen := 0
	for _, cell := range c.Cells {
		n := len(cell.Segments)
		switch {
		case fewest == -1 || n < fewest:
			fewest = n
			bestCell = cell
			seen = 1
		case n == fewest:
			seen++
			if temporal.OneOfK(rng, seen) {
				bestCell = cell
			}
		}
	}
	return bestCell, nil
}
