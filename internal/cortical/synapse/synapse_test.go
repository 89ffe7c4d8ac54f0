package synapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const connectedAt = 0.2

func TestNewClampsAndRecomputesConnected(t *testing.T) {
	s := New(1.5, connectedAt)
	assert.Equal(t, 1.0, s.Permanence)
	assert.True(t, s.Connected)

	s2 := New(-0.5, connectedAt)
	assert.Equal(t, 0.0, s2.Permanence)
	assert.False(t, s2.Connected)
}

func TestIncreaseClampsAtOne(t *testing.T) {
	s := New(0.95, connectedAt)
	s.Increase(0.5, connectedAt)
	assert.Equal(t, 1.0, s.Permanence)
	assert.True(t, s.Connected)
}

func TestDecreaseFloorsAtGivenFloor(t *testing.T) {
	s := New(0.05, connectedAt)
	s.Decrease(0.5, 0, connectedAt)
	assert.Equal(t, 0.0, s.Permanence)
	assert.False(t, s.Connected)
}

func TestConnectedFlagTracksThreshold(t *testing.T) {
	s := New(0.19, connectedAt)
	assert.False(t, s.Connected)

	s.Increase(0.01, connectedAt)
	assert.InDelta(t, 0.20, s.Permanence, 1e-9)
	assert.True(t, s.Connected)
}

func TestDeferredClampPatternYieldsNetIncrement(t *testing.T) {
	// Active synapse: decrement unclamped then add back Inc+Dec, net +Inc.
	active := New(0.5, connectedAt)
	const inc, dec = 0.05, 0.03

	active.DecreaseUnclamped(dec)
	active.AddUnclamped(inc + dec)
	active.Clamp(connectedAt)
	assert.InDelta(t, 0.55, active.Permanence, 1e-9)

	// Inactive synapse only gets the decrement.
	inactive := New(0.5, connectedAt)
	inactive.DecreaseUnclamped(dec)
	inactive.Clamp(connectedAt)
	assert.InDelta(t, 0.47, inactive.Permanence, 1e-9)
}

func TestIsDeadExactlyAtZero(t *testing.T) {
	s := New(0.03, connectedAt)
	assert.False(t, s.IsDead())
	s.Decrease(0.03, 0, connectedAt)
	assert.True(t, s.IsDead())
}

func TestSetConnectedThresholdOnlyAffectsConnectedSynapses(t *testing.T) {
	connected := New(0.9, connectedAt)
	connected.SetConnectedThreshold(connectedAt)
	assert.Equal(t, connectedAt, connected.Permanence)

	unconnected := New(0.05, connectedAt)
	unconnected.SetConnectedThreshold(connectedAt)
	assert.Equal(t, 0.05, unconnected.Permanence, "unconnected synapse must not be snapped")
}

func TestNudgeTowardConnectedMovesUnconnectedUp(t *testing.T) {
	s := New(0.05, connectedAt)
	s.NudgeTowardConnected(0.05, connectedAt)
	assert.InDelta(t, 0.10, s.Permanence, 1e-9)
}

func TestNudgeTowardConnectedStopsAtThreshold(t *testing.T) {
	under := New(0.18, connectedAt)
	under.NudgeTowardConnected(0.05, connectedAt)
	assert.InDelta(t, connectedAt, under.Permanence, 1e-9, "an unconnected synapse must not overshoot the threshold")
	assert.True(t, under.Connected)

	over := New(0.9, connectedAt)
	over.NudgeTowardConnected(0.05, connectedAt)
	assert.InDelta(t, 0.85, over.Permanence, 1e-9, "an over-connected synapse drifts back down toward the threshold")
	assert.True(t, over.Connected)
}
