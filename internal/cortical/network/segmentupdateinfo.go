package network

// EnqueueTrigger records why a SegmentUpdateInfo was queued: whether
// the owning cell was active or only predictive at enqueue time. A
// record enqueued due to predictive state is not yet falsifiable on
// the same step it was created, so ApplyUpdates leaves it queued.
type EnqueueTrigger int

const (
	DueToActive EnqueueTrigger = iota
	DueToPredictive
)

// ApplyTrigger selects which ApplyUpdates pass is running: Active
// reinforces positively, Inactive and LongerPrediction reinforce
// negatively.
type ApplyTrigger int

const (
	ApplyActive ApplyTrigger = iota
	ApplyInactive
	ApplyLongerPrediction
)

// SegmentUpdateInfo is a pending reinforcement queued against one Cell,
// applied (or discarded) on a later step once that step's outcome is
// known.
type SegmentUpdateInfo struct {
	TargetCell    *Cell
	TargetSegment *DistalSegment // nil means "create a new segment"

	AddNewSynapses     bool
	NumPredictionSteps int
	CreatedAt          int
	Trigger            EnqueueTrigger

	ActiveSynapsesSnapshot []*DistalSynapse
	LearningCells          []*Cell
}

// Reset satisfies pool.Resettable.
func (u *SegmentUpdateInfo) Reset() {
	*u = SegmentUpdateInfo{}
}
