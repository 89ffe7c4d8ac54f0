// Package synapse implements the permanence-bearing connection shared
// by proximal (feed-forward) and distal (lateral) segments.
package synapse

import "math"

// Params bundles the four tunables that govern permanence dynamics for
// one synapse population (proximal or distal). Both populations use
// the same shape; Region carries one of each.
type Params struct {
	InitialPermanence   float64 `json:"initial_permanence" validate:"gt=0,lte=1"`
	ConnectedPermanence float64 `json:"connected_permanence" validate:"gt=0,lte=1"`
	PermanenceIncrease  float64 `json:"permanence_increase" validate:"gt=0,lte=1"`
	PermanenceDecrease  float64 `json:"permanence_decrease" validate:"gt=0,lte=1"`
}

// Synapse carries a clamped permanence value and the derived connected
// flag. InputSource identifies what the synapse points at; it is left
// to the embedding type (proximal vs distal) since the two point at
// structurally different things (an InputSpace/Region coordinate vs a
// Cell).
type Synapse struct {
	Permanence float64
	Connected  bool
}

// New creates a synapse at the given initial permanence, against
// connectedAt (the owning segment's ConnectedPermanence).
func New(initialPermanence, connectedAt float64) Synapse {
	s := Synapse{Permanence: clamp(initialPermanence)}
	s.recompute(connectedAt)
	return s
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (s *Synapse) recompute(connectedAt float64) {
	s.Connected = s.Permanence >= connectedAt
}

// Increase raises permanence by inc, clamped to 1, and recomputes
// Connected.
func (s *Synapse) Increase(inc, connectedAt float64) {
	s.Permanence = clamp(s.Permanence + inc)
	s.recompute(connectedAt)
}

// Decrease lowers permanence by dec, floored at floor (use -math.MaxFloat64
// for "no floor, clamp later" via DecreaseUnclamped), and recomputes
// Connected. A result within floating-point residue of floor lands on
// floor exactly, so n decrements of dec from n*dec reach 0.
func (s *Synapse) Decrease(dec, floor, connectedAt float64) {
	const residue = 1e-9
	s.Permanence -= dec
	if s.Permanence < floor+residue {
		s.Permanence = floor
	}
	s.recompute(connectedAt)
}

// DecreaseUnclamped subtracts dec without applying any floor or
// ceiling and without recomputing Connected. It exists for the
// deferred-clamp reinforcement pattern: decrement every synapse
// unclamped, selectively add back Inc+Dec for the active ones, then
// Clamp once at the end.
func (s *Synapse) DecreaseUnclamped(dec float64) {
	s.Permanence -= dec
}

// AddUnclamped adds delta without clamping or recomputing Connected.
func (s *Synapse) AddUnclamped(delta float64) {
	s.Permanence += delta
}

// Clamp bounds Permanence to [0,1] and recomputes Connected. Call this
// once after a DecreaseUnclamped/AddUnclamped pass.
func (s *Synapse) Clamp(connectedAt float64) {
	s.Permanence = clamp(s.Permanence)
	s.recompute(connectedAt)
}

// IsDead reports whether the synapse's permanence has reached exactly
// zero, the condition under which it is released back to its pool.
func (s *Synapse) IsDead() bool {
	return s.Permanence == 0
}

// SetConnectedThreshold snaps a synapse's Permanence down to exactly
// connectedAt, used on the first step of a boosting episode. It only
// has an effect on synapses that are currently connected.
func (s *Synapse) SetConnectedThreshold(connectedAt float64) {
	if s.Connected {
		s.Permanence = connectedAt
		s.Connected = true
	}
}

// NudgeTowardConnected moves an unconnected synapse's permanence up by
// step toward connectedAt, or an over-connected synapse's permanence
// down by step, never crossing connectedAt in either direction. Used
// once a column's boost is pinned at its cap.
func (s *Synapse) NudgeTowardConnected(step, connectedAt float64) {
	if s.Permanence < connectedAt {
		s.Permanence = math.Min(connectedAt, s.Permanence+step)
	} else if s.Permanence > connectedAt {
		s.Permanence = math.Max(connectedAt, s.Permanence-step)
	}
	s.recompute(connectedAt)
}
