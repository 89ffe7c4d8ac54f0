package network

import (
	"math"
	"math/rand"

	"github.com/htm-project/cortical-api/internal/cortical/spatial"
	"github.com/htm-project/cortical-api/internal/cortical/synapse"
	"github.com/htm-project/cortical-api/internal/domain/htm"
)

// Region is a 2-D grid of Columns sharing one set of spatial/temporal
// parameters, composing a full step out of rotation, spatial pooling,
// and the three temporal phases.
type Region struct {
	ID                       string
	SizeX                    int
	SizeY                    int
	CellsPerColumn           int
	HypercolumnDiameter      int
	PredictionRadius         int // -1 = whole Region
	SegmentActivateThreshold int

	InhibitionAutomatic bool
	InhibitionRadius    float64

	NewNumberSynapses        int
	PercentageInputPerColumn float64
	PercentageMinOverlap     float64
	PercentageLocalActivity  float64

	BoostMax  float64
	BoostRate float64

	SpatialLearning  htm.LearningPeriod
	TemporalLearning htm.LearningPeriod
	Boosting         htm.LearningPeriod

	HardcodedSpatial     bool
	OutputColumnActivity bool
	OutputCellActivity   bool

	ProximalParams synapse.Params
	DistalParams   synapse.Params

	Columns []*Column

	inputs []regionInputSource

	time int
	rng  *rand.Rand

	segPool            func() *DistalSegment
	releaseProximalSyn func(*ProximalSynapse)
	releaseDistalSyn   func(*DistalSynapse)
	releaseSegment     func(*DistalSegment)
	releaseUpdateInfo  func(*SegmentUpdateInfo)
	newDistalSyn       func() *DistalSynapse
	newUpdateInfo      func() *SegmentUpdateInfo
}

// Dims implements ActivitySource so a Region can serve as a downstream
// Region's input alongside InputSpaces. The third dimension is CellsPerColumn when
// OutputCellActivity exposes per-cell activity, or 1 when only
// post-inhibition column activity (OutputColumnActivity) is exposed.
func (r *Region) Dims() (sizeX, sizeY, numValues int) {
	if r.OutputCellActivity {
		return r.SizeX, r.SizeY, r.CellsPerColumn
	}
	return r.SizeX, r.SizeY, 1
}

// IsActive implements ActivitySource, reading this step's column
// activity (or cell activity, when OutputCellActivity is set) at (x,y).
func (r *Region) IsActive(x, y, i int) bool {
	col := r.columnAt(x, y)
	if r.OutputCellActivity {
		return col.Cells[i].Active
	}
	return col.Active
}

func (r *Region) columnAt(x, y int) *Column {
	return r.Columns[y*r.SizeX+x]
}

// columnsWithin returns every column whose hypercolumn lies within
// radiusHc hypercolumns (Chebyshev) of col's hypercolumn, or every
// column in the Region if radiusHc < 0. Both the inhibition window and
// the prediction window are computed this way.
func (r *Region) columnsWithin(col *Column, radiusHc int) []*Column {
	if radiusHc < 0 {
		return r.Columns
	}
	hx, hy := col.Hyper.X, col.Hyper.Y
	minX := maxInt(0, (hx-radiusHc)*r.HypercolumnDiameter)
	maxX := minInt(r.SizeX-1, (hx+radiusHc+1)*r.HypercolumnDiameter-1)
	minY := maxInt(0, (hy-radiusHc)*r.HypercolumnDiameter)
	maxY := minInt(r.SizeY-1, (hy+radiusHc+1)*r.HypercolumnDiameter-1)

	var out []*Column
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			out = append(out, r.columnAt(x, y))
		}
	}
	return out
}

// averageReceptiveFieldSize is the mean, over all columns, of the
// maximum distanceToInput among that column's connected proximal
// synapses.
func (r *Region) averageReceptiveFieldSize() float64 {
	maxDistances := make([]float64, len(r.Columns))
	for i, col := range r.Columns {
		maxDistances[i] = col.maxConnectedDistance()
	}
	return spatial.Mean(maxDistances)
}

func (c *Column) maxConnectedDistance() float64 {
	var distances []float64
	for _, syn := range c.Proximal.Synapses {
		if syn.Connected {
			distances = append(distances, syn.Distance)
		}
	}
	if len(distances) == 0 {
		return 0
	}
	return spatial.MaxAmong(distances)
}

// recomputeInhibitionRadius refreshes InhibitionRadius (in automatic
// mode only) and every column's DesiredLocalActivity, which depends on
// the edge-clipped area of that column's inhibition window and so must
// follow any radius change.
func (r *Region) recomputeInhibitionRadius() {
	if r.InhibitionAutomatic {
		r.InhibitionRadius = r.averageReceptiveFieldSize()
	}
	radius := int(math.Round(r.InhibitionRadius))
	for _, col := range r.Columns {
		area := len(r.columnsWithin(col, radius))
		col.DesiredLocalActivity = int(math.Round(r.PercentageLocalActivity / 100 * float64(area)))
	}
}

// isWithinKthScore reports whether fewer than k neighboring columns
// within the inhibition window have strictly greater overlap than col.
// Ties favor inclusion.
func (r *Region) isWithinKthScore(col *Column, k int) bool {
	radius := int(math.Round(r.InhibitionRadius))
	greater := 0
	for _, other := range r.columnsWithin(col, radius) {
		if other != col && other.Overlap > col.Overlap {
			greater++
		}
	}
	return greater < k
}

// stepSpatial computes overlaps, runs local inhibition, and applies
// spatial learning, duty-cycle tracking, and boosting.
func (r *Region) stepSpatial() {
	if r.HardcodedSpatial {
		// The sole input is the same size as this Region with one value
		// per column; its activity is copied one-to-one.
		src := r.inputs[0].Source
		for _, col := range r.Columns {
			col.WasActive = col.Active
			col.Active = src.IsActive(col.Position.X, col.Position.Y, 0)
			col.Inhibited = !col.Active
		}
		return
	}

	for _, col := range r.Columns {
		col.ComputeOverlap(r.ProximalParams)
	}

	for _, col := range r.Columns {
		col.WasActive = col.Active
		col.Active = col.Overlap > 0 && r.isWithinKthScore(col, col.DesiredLocalActivity)
		col.Inhibited = !col.Active
	}

	inSpatialLearning := r.SpatialLearning.Contains(r.time)
	inBoosting := r.Boosting.Contains(r.time)

	for _, col := range r.Columns {
		maxDuty := 0.0
		for _, n := range r.columnsWithin(col, int(math.Round(r.InhibitionRadius))) {
			if n.ActiveDutyCycleSlow > maxDuty {
				maxDuty = n.ActiveDutyCycleSlow
			}
		}
		col.MaxDutyCycle = maxDuty
	}

	for _, col := range r.Columns {
		if col.Active && inSpatialLearning {
			col.AdaptPermanences(r.ProximalParams)
			if r.releaseProximalSyn != nil {
				for _, dead := range col.Proximal.PruneDead() {
					r.releaseProximalSyn(dead)
				}
			}
		}
		col.UpdateDutyCycles(col.MinOverlap)

		if inBoosting {
			col.ApplyBoosting(r.BoostRate, r.ProximalParams.ConnectedPermanence)
		}
	}

	if inSpatialLearning && r.InhibitionAutomatic {
		r.recomputeInhibitionRadius()
	}
}

// stepTemporalPhase1 computes cell active and learning states for
// every active column, bursting columns whose activity was not
// predicted by a sequence segment.
func (r *Region) stepTemporalPhase1() {
	learningOn := r.TemporalLearning.Contains(r.time)

	for _, col := range r.Columns {
		if !col.Active {
			continue
		}

		predicted := false
		learningChosen := false
		for _, cell := range col.Cells {
			if !cell.WasPredicted {
				continue
			}
			seg := cell.previousActiveSegment()
			if seg == nil || !seg.IsSequence {
				continue
			}
			predicted = true
			cell.Active = true
			if learningOn && seg.wasActiveFromLearning() {
				cell.Learning = true
				learningChosen = true
			}
		}

		if !predicted {
			for _, cell := range col.Cells {
				cell.Active = true
			}
		}

		if learningOn && !learningChosen {
			cell, seg := col.BestMatchingCell(1, true, r.rng)
			if cell != nil {
				cell.Learning = true
				info := cell.enqueueUpdate(r.time, seg, true, true, DueToActive,
					1, r.NewNumberSynapses, r.PredictionRadius, r.rng)
				info.NumPredictionSteps = 1
			}
		}
	}
}

const maxTimeSteps = 10

// stepTemporalPhase2 computes every cell's predictive state from its
// distal segments and queues the reinforcement updates that this
// step's outcome will later prove right or wrong.
func (r *Region) stepTemporalPhase2() {
	learningOn := r.TemporalLearning.Contains(r.time)

	for _, col := range r.Columns {
		for _, cell := range col.Cells {
			cell.ProcessSegments()

			for _, seg := range cell.Segments {
				if !seg.IsActive() {
					continue
				}
				cell.SetPredictive(seg)

				if learningOn {
					cell.enqueueUpdate(r.time, seg, false, false, DueToPredictive,
						seg.NumPredictionSteps(), r.NewNumberSynapses, r.PredictionRadius, r.rng)
				}
			}

			if learningOn && cell.Predicting && cell.NumPredictionSteps != maxTimeSteps {
				next := cell.NumPredictionSteps + 1
				seg, _ := cell.bestSegmentFor(next, true)
				info := cell.enqueueUpdate(r.time, seg, true, true, DueToPredictive,
					next, r.NewNumberSynapses, r.PredictionRadius, r.rng)
				if seg == nil {
					info.NumPredictionSteps = next
				}
			}
		}
	}
}

// stepTemporalPhase3 applies each cell's queued updates under the
// trigger its state transition selects: learning cells reinforce
// positively, cells whose prediction lapsed or stretched reinforce
// negatively.
func (r *Region) stepTemporalPhase3() {
	if !r.TemporalLearning.Contains(r.time) {
		return
	}
	for _, col := range r.Columns {
		for _, cell := range col.Cells {
			switch {
			case cell.Learning:
				cell.ApplyUpdates(r.time, ApplyActive, r.DistalParams, r.segPool)
			case cell.WasPredicted && !cell.Predicting:
				cell.ApplyUpdates(r.time, ApplyInactive, r.DistalParams, r.segPool)
			case cell.Predicting && cell.WasPredicted && cell.NumPredictionSteps > 1 && cell.PrevNumPredictionSteps == 1:
				cell.ApplyUpdates(r.time, ApplyLongerPrediction, r.DistalParams, r.segPool)
			}
		}
	}
}

// Step runs one full synchronous traversal of this Region: rotate,
// spatial pooling, then the three temporal phases in order.
func (r *Region) Step() {
	for _, col := range r.Columns {
		col.Proximal.Rotate()
		for _, cell := range col.Cells {
			cell.Rotate()
		}
	}

	r.time++

	r.stepSpatial()
	r.stepTemporalPhase1()
	r.stepTemporalPhase2()
	r.stepTemporalPhase3()
}
