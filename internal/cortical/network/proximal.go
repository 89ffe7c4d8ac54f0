package network

import "github.com/htm-project/cortical-api/internal/cortical/synapse"

// ProximalSynapse is a feed-forward connection from a Column's
// receptive field to one coordinate in an upstream ActivitySource.
type ProximalSynapse struct {
	synapse.Synapse
	Source     ActivitySource
	Coordinate Coordinate
	Distance   float64 // Euclidean distance to the column's receptive-field center, in Region coordinates

	active bool // recomputed at the start of processSegment each step
}

// Reset satisfies pool.Resettable.
func (s *ProximalSynapse) Reset() {
	*s = ProximalSynapse{}
}

// ProximalSegment is a Column's single feed-forward receptive field;
// every Column owns exactly one.
type ProximalSegment struct {
	Synapses []*ProximalSynapse

	// processSegment() outputs, valid after Process.
	ActiveCount                 int
	ActiveConnectedCount        int
	InactiveWellConnectedCount  int
	ConnectedCount              int
	PrevActiveConnectedCount    int
	prevActiveConnectedSnapshot []*ProximalSynapse
}

// Reset satisfies pool.Resettable.
func (s *ProximalSegment) Reset() {
	*s = ProximalSegment{}
}

// Rotate performs the per-step "wasActive <- isActive" shift ahead of
// this step's Process call.
func (s *ProximalSegment) Rotate() {
	s.PrevActiveConnectedCount = s.ActiveConnectedCount
	s.prevActiveConnectedSnapshot = append(s.prevActiveConnectedSnapshot[:0], s.activeConnectedSynapses()...)
}

func (s *ProximalSegment) activeConnectedSynapses() []*ProximalSynapse {
	out := make([]*ProximalSynapse, 0, s.ActiveConnectedCount)
	for _, syn := range s.Synapses {
		if syn.active && syn.Connected {
			out = append(out, syn)
		}
	}
	return out
}

// Process recomputes every synapse's active flag from its source and
// aggregates the per-step counts in one pass: active,
// active-and-connected, inactive-but-well-connected, and connected.
func (s *ProximalSegment) Process(initialPermanence float64) {
	s.ActiveCount = 0
	s.ActiveConnectedCount = 0
	s.InactiveWellConnectedCount = 0
	s.ConnectedCount = 0

	for _, syn := range s.Synapses {
		syn.active = syn.Source.IsActive(syn.Coordinate.X, syn.Coordinate.Y, syn.Coordinate.I)

		if syn.active {
			s.ActiveCount++
		}
		if syn.Connected {
			s.ConnectedCount++
			if syn.active {
				s.ActiveConnectedCount++
			}
		}
		if !syn.active && syn.Permanence > initialPermanence {
			s.InactiveWellConnectedCount++
		}
	}
}

// AdaptPermanences increments every active synapse and decrements
// every inactive one, clamped to [0,1].
func (s *ProximalSegment) AdaptPermanences(params synapse.Params) {
	for _, syn := range s.Synapses {
		if syn.active {
			syn.Increase(params.PermanenceIncrease, params.ConnectedPermanence)
		} else {
			syn.Decrease(params.PermanenceDecrease, 0, params.ConnectedPermanence)
		}
	}
}

// PruneDead removes synapses whose permanence has reached exactly 0,
// returning them for release back to the pool.
func (s *ProximalSegment) PruneDead() []*ProximalSynapse {
	var dead []*ProximalSynapse
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
