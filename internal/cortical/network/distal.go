package network

import "github.com/htm-project/cortical-api/internal/cortical/synapse"

// DistalSynapse is a lateral connection from a Cell's distal segment to
// another Cell in the same Region.
type DistalSynapse struct {
	synapse.Synapse
	Source *Cell

	active bool // recomputed each Process call from Source's activity state
}

// Reset satisfies pool.Resettable.
func (s *DistalSynapse) Reset() {
	*s = DistalSynapse{}
}

// DistalSegment is one of a Cell's distal segments, each predicting a
// fixed number of steps ahead.
type DistalSegment struct {
	Synapses []*DistalSynapse

	ActivationThreshold int
	numPredictionSteps  int
	IsSequence          bool
	CreatedAt           int

	// Process() outputs, valid afterward. ActiveSynapses holds every
	// synapse whose source cell fires, regardless of connection;
	// ActiveConnectedCount restricts to connected ones and drives
	// IsActive.
	ActiveCount              int
	ActiveConnectedCount     int
	ActiveLearningCount      int
	ActiveSynapses           []*DistalSynapse
	PrevActiveSynapses       []*DistalSynapse
	prevActiveCountCache     int
	prevActiveConnectedCount int
}

// Reset satisfies pool.Resettable.
func (s *DistalSegment) Reset() {
	*s = DistalSegment{}
}

// SetNumPredictionSteps clamps to [1,10] and derives IsSequence,
// which is true exactly for one-step segments.
func (s *DistalSegment) SetNumPredictionSteps(n int) {
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	s.numPredictionSteps = n
	s.IsSequence = n == 1
}

// NumPredictionSteps returns the segment's configured prediction
// horizon.
func (s *DistalSegment) NumPredictionSteps() int {
	return s.numPredictionSteps
}

// Rotate shifts this step's active-synapse snapshot into "previous"
// ahead of the next Process call.
func (s *DistalSegment) Rotate() {
	s.PrevActiveSynapses = append(s.PrevActiveSynapses[:0], s.ActiveSynapses...)
	s.prevActiveCountCache = s.ActiveCount
	s.prevActiveConnectedCount = s.ActiveConnectedCount
}

// Process recomputes every synapse's active flag from its source
// Cell's current activity and aggregates ActiveSynapses (firing
// regardless of connection) and ActiveConnectedCount in one pass.
func (s *DistalSegment) Process() {
	s.ActiveCount = 0
	s.ActiveConnectedCount = 0
	s.ActiveLearningCount = 0
	s.ActiveSynapses = s.ActiveSynapses[:0]
	for _, syn := range s.Synapses {
		syn.active = syn.Source.Active
		if syn.active {
			s.ActiveCount++
			s.ActiveSynapses = append(s.ActiveSynapses, syn)
			if syn.Connected {
				s.ActiveConnectedCount++
			}
			if syn.Source.Learning {
				s.ActiveLearningCount++
			}
		}
	}
}

// IsActive reports whether the segment's active-connected count meets
// its activation threshold.
func (s *DistalSegment) IsActive() bool {
	return s.ActiveConnectedCount >= s.ActivationThreshold
}

// wasActiveFromLearning reports whether the number of this segment's
// synapses whose source cell was both active and learning in the
// previous step meets the activation threshold.
func (s *DistalSegment) wasActiveFromLearning() bool {
	count := 0
	for _, syn := range s.Synapses {
		if syn.Source.WasActive && syn.Source.WasLearning {
			count++
		}
	}
	return count >= s.ActivationThreshold
}

// UpdatePermanences applies positive reinforcement against a captured
// snapshot of learning cells using the deferred-clamp pattern: every
// synapse is decremented unclamped, synapses whose source is in the
// snapshot get Inc+Dec added back, then every synapse is clamped once.
func (s *DistalSegment) UpdatePermanences(snapshot []*Cell, params synapse.Params) {
	inSnapshot := make(map[*Cell]bool, len(snapshot))
	for _, c := range snapshot {
		inSnapshot[c] = true
	}

	for _, syn := range s.Synapses {
		syn.DecreaseUnclamped(params.PermanenceDecrease)
		if inSnapshot[syn.Source] {
			syn.AddUnclamped(params.PermanenceIncrease + params.PermanenceDecrease)
		}
		syn.Clamp(params.ConnectedPermanence)
	}
}

// DecreasePermanences applies negative reinforcement: every synapse
// whose source is in the snapshot is decremented, floored at 0.
func (s *DistalSegment) DecreasePermanences(snapshot []*Cell, params synapse.Params) {
	inSnapshot := make(map[*Cell]bool, len(snapshot))
	for _, c := range snapshot {
		inSnapshot[c] = true
	}
	for _, syn := range s.Synapses {
		if inSnapshot[syn.Source] {
			syn.Decrease(params.PermanenceDecrease, 0, params.ConnectedPermanence)
		}
	}
}

// PruneDead removes synapses whose permanence has reached exactly 0.
func (s *DistalSegment) PruneDead() []*DistalSynapse {
	var dead []*DistalSynapse
	kept := s.Synapses[:0]
	for _, syn := range s.Synapses {
		if syn.IsDead() {
			dead = append(dead, syn)
		} else {
			kept = append(kept, syn)
		}
	}
	s.Synapses = kept
	return dead
}

// CreateSynapsesToLearningCells adds new distal synapses from this
// segment to each cell in learningCells that the segment does not
// already connect to, at the population's initial permanence.
func (s *DistalSegment) CreateSynapsesToLearningCells(learningCells []*Cell, params synapse.Params, newSynapse func() *DistalSynapse) {
	existing := make(map[*Cell]bool, len(s.Synapses))
	for _, syn := range s.Synapses {
		existing[syn.Source] = true
	}
	for _, cell := range learningCells {
		if existing[cell] {
			continue
		}
		syn := newSynapse()
		syn.Synapse = synapse.New(params.InitialPermanence, params.ConnectedPermanence)
		syn.Source = cell
		s.Synapses = append(s.Synapses, syn)
		existing[cell] = true
	}
}
