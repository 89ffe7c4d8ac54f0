package network

import (
	"testing"

	"github.com/htm-project/cortical-api/internal/cortical/synapse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var distalParams = synapse.Params{
	InitialPermanence:   0.3,
	ConnectedPermanence: 0.2,
	PermanenceIncrease:  0.1,
	PermanenceDecrease:  0.1,
}

func newTestDistalSynapse(source *Cell, permanence float64) *DistalSynapse {
	s := &DistalSynapse{Source: source}
	s.Synapse = synapse.New(permanence, distalParams.ConnectedPermanence)
	return s
}

func TestSetNumPredictionStepsClampsAndDerivesSequence(t *testing.T) {
	seg := &DistalSegment{}

	seg.SetNumPredictionSteps(0)
	assert.Equal(t, 1, seg.NumPredictionSteps())
	assert.True(t, seg.IsSequence)

	seg.SetNumPredictionSteps(25)
	assert.Equal(t, 10, seg.NumPredictionSteps())
	assert.False(t, seg.IsSequence)

	seg.SetNumPredictionSteps(3)
	assert.Equal(t, 3, seg.NumPredictionSteps())
	assert.False(t, seg.IsSequence)
}

func TestDistalSegmentProcessSeparatesActiveFromActiveConnected(t *testing.T) {
	active := &Cell{Active: true}
	inactive := &Cell{Active: false}

	seg := &DistalSegment{ActivationThreshold: 2}
	connectedActive := newTestDistalSynapse(active, 0.5)
	unconnectedActive := newTestDistalSynapse(active, 0.05)
	connectedInactive := newTestDistalSynapse(inactive, 0.5)
	seg.Synapses = []*DistalSynapse{connectedActive, unconnectedActive, connectedInactive}

	seg.Process()

	assert.Equal(t, 2, seg.ActiveCount, "every synapse with a firing source counts, connected or not")
	assert.Len(t, seg.ActiveSynapses, 2)
	assert.Equal(t, 1, seg.ActiveConnectedCount, "only the connected one counts toward activation")
	assert.False(t, seg.IsActive(), "activation threshold of 2 must not be met by a single active connected synapse")

	connectedActive2 := newTestDistalSynapse(active, 0.5)
	seg.Synapses = append(seg.Synapses, connectedActive2)
	seg.Process()
	assert.Equal(t, 2, seg.ActiveConnectedCount)
	assert.True(t, seg.IsActive())
}

func TestDistalSegmentRotateSnapshotsPreviousActivity(t *testing.T) {
	active := &Cell{Active: true}
	seg := &DistalSegment{ActivationThreshold: 1}
	seg.Synapses = []*DistalSynapse{newTestDistalSynapse(active, 0.5)}

	seg.Process()
	require.Equal(t, 1, seg.ActiveCount)

	seg.Rotate()
	assert.Equal(t, 1, seg.prevActiveCountCache)
	assert.Len(t, seg.PrevActiveSynapses, 1)

	active.Active = false
	seg.Process()
	assert.Equal(t, 0, seg.ActiveCount, "current activity should reflect the source's new state")
	assert.Equal(t, 1, seg.prevActiveCountCache, "previous snapshot must not change until the next Rotate")
}

func TestUpdatePermanencesReinforcesSnapshotSourcesOnly(t *testing.T) {
	learning := &Cell{}
	other := &Cell{}

	seg := &DistalSegment{}
	inSnapshot := newTestDistalSynapse(learning, 0.5)
	notInSnapshot := newTestDistalSynapse(other, 0.5)
	seg.Synapses = []*DistalSynapse{inSnapshot, notInSnapshot}

	seg.UpdatePermanences([]*Cell{learning}, distalParams)

	assert.InDelta(t, 0.6, inSnapshot.Permanence, 1e-9, "snapshot source gets net +increase")
	assert.InDelta(t, 0.4, notInSnapshot.Permanence, 1e-9, "non-snapshot source only gets the decrement")
}

func TestDecreasePermanencesOnlyAffectsSnapshotSources(t *testing.T) {
	learning := &Cell{}
	other := &Cell{}

	seg := &DistalSegment{}
	inSnapshot := newTestDistalSynapse(learning, 0.5)
	notInSnapshot := newTestDistalSynapse(other, 0.5)
	seg.Synapses = []*DistalSynapse{inSnapshot, notInSnapshot}

	seg.DecreasePermanences([]*Cell{learning}, distalParams)

	assert.InDelta(t, 0.4, inSnapshot.Permanence, 1e-9)
	assert.InDelta(t, 0.5, notInSnapshot.Permanence, 1e-9, "a source absent from the snapshot must be left untouched")
}

func TestPruneDeadRemovesZeroPermanenceSynapsesOnly(t *testing.T) {
	seg := &DistalSegment{}
	dying := newTestDistalSynapse(&Cell{}, 0.1)
	dying.Decrease(0.1, 0, distalParams.ConnectedPermanence)
	alive := newTestDistalSynapse(&Cell{}, 0.5)
	seg.Synapses = []*DistalSynapse{dying, alive}

	dead := seg.PruneDead()

	assert.Equal(t, []*DistalSynapse{dying}, dead)
	assert.Equal(t, []*DistalSynapse{alive}, seg.Synapses)
}

func TestCreateSynapsesToLearningCellsSkipsExistingSources(t *testing.T) {
	already := &Cell{}
	fresh := &Cell{}

	seg := &DistalSegment{}
	seg.Synapses = []*DistalSynapse{newTestDistalSynapse(already, 0.3)}

	pool := []*DistalSynapse{}
	newSyn := func() *DistalSynapse {
		s := &DistalSynapse{}
		pool = append(pool, s)
		return s
	}

	seg.CreateSynapsesToLearningCells([]*Cell{already, fresh}, distalParams, newSyn)

	assert.Len(t, seg.Synapses, 2, "a synapse to an already-connected source must not be duplicated")
	assert.Len(t, pool, 1, "only the genuinely new source should draw a fresh synapse")
}
