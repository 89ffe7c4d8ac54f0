package network

import (
	"math/rand"

	"github.com/htm-project/cortical-api/internal/cortical/synapse"
	"github.com/htm-project/cortical-api/internal/cortical/temporal"
)

// Cell is one of a Column's cellsPerColumn cells: the engine's unit of
// temporal state.
type Cell struct {
	Column *Column
	Index  int

	Active              bool
	WasActive           bool
	Learning            bool
	WasLearning         bool
	Predicting          bool
	WasPredicted        bool
	SegmentPredicting   bool
	WasSegmentPredicted bool

	NumPredictionSteps     int
	PrevNumPredictionSteps int

	Segments []*DistalSegment

	updateQueue      []*SegmentUpdateInfo
	modifiedSegments map[*DistalSegment]bool
}

// Reset satisfies pool.Resettable.
func (c *Cell) Reset() {
	*c = Cell{}
}

// Rotate advances the cell to the next step: move current state into
// the was… fields, clear currents, rotate numPredictionSteps, and
// rotate every owned segment.
func (c *Cell) Rotate() {
	c.WasActive = c.Active
	c.WasLearning = c.Learning
	c.WasPredicted = c.Predicting
	c.WasSegmentPredicted = c.SegmentPredicting

	c.Active = false
	c.Learning = false
	c.Predicting = false
	c.SegmentPredicting = false

	c.PrevNumPredictionSteps = c.NumPredictionSteps
	c.NumPredictionSteps = 0

	for _, seg := range c.Segments {
		seg.Rotate()
	}
}

// ProcessSegments runs DistalSegment.Process on every owned segment.
func (c *Cell) ProcessSegments() {
	for _, seg := range c.Segments {
		seg.Process()
	}
}

// SetPredictive folds one newly-active segment's prediction horizon
// into the cell's numPredictionSteps: the first active segment sets
// it, every subsequent one lowers it to the minimum, so the cell ends
// up carrying its earliest predicted activation.
func (c *Cell) SetPredictive(seg *DistalSegment) {
	if !c.Predicting || seg.NumPredictionSteps() < c.NumPredictionSteps {
		c.NumPredictionSteps = seg.NumPredictionSteps()
	}
	c.Predicting = true
	if seg.IsSequence {
		c.SegmentPredicting = true
	}
}

// enqueueUpdate allocates and queues a SegmentUpdateInfo. usePrevious
// selects whether the segment's previous-step or current-step
// active-synapse snapshot is captured; seg may be nil (record targets
// "create a new segment").
func (c *Cell) enqueueUpdate(now int, seg *DistalSegment, usePrevious, addNew bool, trigger EnqueueTrigger, numPredictionSteps, newSynapsesCount, predictionRadius int, rng *rand.Rand) *SegmentUpdateInfo {
	info := c.Column.Region.newUpdateInfo()
	info.TargetCell = c
	info.TargetSegment = seg
	info.AddNewSynapses = addNew
	info.NumPredictionSteps = numPredictionSteps
	info.CreatedAt = now
	info.Trigger = trigger

	if seg != nil {
		if usePrevious {
			info.ActiveSynapsesSnapshot = append(info.ActiveSynapsesSnapshot, seg.PrevActiveSynapses...)
		} else {
			info.ActiveSynapsesSnapshot = append(info.ActiveSynapsesSnapshot, seg.ActiveSynapses...)
		}
	}

	if addNew {
		target := newSynapsesCount
		if seg != nil {
			target -= len(info.ActiveSynapsesSnapshot)
		}
		info.LearningCells = c.sampleLearningCells(seg, target, predictionRadius, rng)
	}

	c.updateQueue = append(c.updateQueue, info)
	return info
}

// sampleLearningCells collects every wasLearning cell in the
// prediction window not already a synapse source on seg, then draws
// target of them by Vitter-style reservoir substitution. A cell may
// connect to another cell in its own column.
func (c *Cell) sampleLearningCells(seg *DistalSegment, target, predictionRadius int, rng *rand.Rand) []*Cell {
	if target <= 0 {
		return nil
	}

	existing := map[*Cell]bool{}
	if seg != nil {
		for _, syn := range seg.Synapses {
			existing[syn.Source] = true
		}
	}

	var candidates []*Cell
	for _, col := range c.Column.Region.columnsWithin(c.Column, predictionRadius) {
		for _, cell := range col.Cells {
			if cell.WasLearning && !existing[cell] {
				candidates = append(candidates, cell)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	picks := temporal.ReservoirSubstitute(rng, len(candidates), target)
	out := make([]*Cell, len(picks))
	for i, idx := range picks {
		out[i] = candidates[idx]
	}
	return out
}

// bestSegmentFor returns the owned segment configured for
// numPredictionSteps with the most active synapses (using the previous
// or current snapshot per usePrevious), and that count. The search is
// aggressive: synapses count whether or not they are connected, but a
// segment only qualifies if its count reaches the column's
// MinOverlapToReuseSegment.
func (c *Cell) bestSegmentFor(numPredictionSteps int, usePrevious bool) (*DistalSegment, int) {
	var best *DistalSegment
	bestCount := c.Column.MinOverlapToReuseSegment
	for _, seg := range c.Segments {
		if seg.NumPredictionSteps() != numPredictionSteps {
			continue
		}
		count := seg.ActiveCount
		if usePrevious {
			count = seg.prevActiveCountCache
		}
		if count >= bestCount {
			bestCount = count
			best = seg
		}
	}
	return best, bestCount
}

// previousActiveSegment returns the owned segment that was active in
// the previous step (cached active-connected-synapse count at or
// above its activation threshold), preferring sequence segments over
// non-sequence ones and, within a preference tier, the segment with
// the most active synapses.
func (c *Cell) previousActiveSegment() *DistalSegment {
	var best *DistalSegment
	foundSequence := false
	mostSyns := 0
	for _, seg := range c.Segments {
		active := seg.prevActiveConnectedCount
		if active < seg.ActivationThreshold {
			continue
		}
		if seg.IsSequence {
			if !foundSequence || active > mostSyns {
				mostSyns = active
				best = seg
			}
			foundSequence = true
		} else if !foundSequence && active > mostSyns {
			mostSyns = active
			best = seg
		}
	}
	return best
}

// ApplyUpdates runs one trigger pass over the cell's pending-update
// queue, reinforcing, growing, or discarding each record. segPool
// allocates a fresh segment for records whose TargetSegment is nil.
func (c *Cell) ApplyUpdates(now int, trigger ApplyTrigger, params synapse.Params, segPool func() *DistalSegment) {
	if c.modifiedSegments == nil {
		c.modifiedSegments = map[*DistalSegment]bool{}
	}

	remaining := c.updateQueue[:0]
	for _, info := range c.updateQueue {
		if info.CreatedAt == now && info.Trigger == DueToPredictive {
			remaining = append(remaining, info)
			continue
		}
		if trigger == ApplyLongerPrediction && info.NumPredictionSteps > 1 {
			remaining = append(remaining, info)
			continue
		}

		if info.TargetSegment != nil {
			switch trigger {
			case ApplyActive:
				info.TargetSegment.UpdatePermanences(info.snapshotCells(), params)
			case ApplyInactive, ApplyLongerPrediction:
				info.TargetSegment.DecreasePermanences(info.snapshotCells(), params)
			}
			c.modifiedSegments[info.TargetSegment] = true
		}

		if info.AddNewSynapses && trigger == ApplyActive {
			if info.TargetSegment == nil && len(info.LearningCells) > 0 {
				seg := segPool()
				seg.ActivationThreshold = c.Column.Region.SegmentActivateThreshold
				seg.SetNumPredictionSteps(info.NumPredictionSteps)
				seg.CreatedAt = now
				seg.CreateSynapsesToLearningCells(info.LearningCells, params, c.Column.Region.newDistalSyn)
				c.Segments = append(c.Segments, seg)
			} else if info.TargetSegment != nil {
				info.TargetSegment.CreateSynapsesToLearningCells(info.LearningCells, params, c.Column.Region.newDistalSyn)
			}
		}

		if region := c.Column.Region; region.releaseUpdateInfo != nil {
			region.releaseUpdateInfo(info)
		}
	}
	c.updateQueue = remaining

	if len(c.updateQueue) == 0 {
		c.prune()
	} else {
		// Pending updates may still hold snapshots naming these
		// segments' synapses; structural removal must wait until the
		// queue drains.
		c.modifiedSegments = nil
	}
}

func (c *Cell) prune() {
	region := c.Column.Region
	for seg := range c.modifiedSegments {
		for _, dead := range seg.PruneDead() {
			if region.releaseDistalSyn != nil {
				region.releaseDistalSyn(dead)
			}
		}
	}
	kept := c.Segments[:0]
	for _, seg := range c.Segments {
		if len(seg.Synapses) > 0 {
			kept = append(kept, seg)
		} else if region.releaseSegment != nil {
			region.releaseSegment(seg)
		}
	}
	c.Segments = kept
	c.modifiedSegments = nil
}

func (info *SegmentUpdateInfo) snapshotCells() []*Cell {
	cells := make([]*Cell, len(info.ActiveSynapsesSnapshot))
	for i, syn := range info.ActiveSynapsesSnapshot {
		cells[i] = syn.Source
	}
	return cells
}
