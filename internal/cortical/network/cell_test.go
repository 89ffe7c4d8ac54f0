package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellRotateShiftsCurrentIntoPrevious(t *testing.T) {
	cell := &Cell{
		Active:             true,
		Learning:           true,
		Predicting:         true,
		SegmentPredicting:  true,
		NumPredictionSteps: 3,
	}

	cell.Rotate()

	assert.True(t, cell.WasActive)
	assert.True(t, cell.WasLearning)
	assert.True(t, cell.WasPredicted)
	assert.True(t, cell.WasSegmentPredicted)
	assert.Equal(t, 3, cell.PrevNumPredictionSteps)

	assert.False(t, cell.Active)
	assert.False(t, cell.Learning)
	assert.False(t, cell.Predicting)
	assert.False(t, cell.SegmentPredicting)
	assert.Equal(t, 0, cell.NumPredictionSteps)
}

func TestCellDoubleRotatePropagatesTwoStepsBack(t *testing.T) {
	cell := &Cell{Active: true, NumPredictionSteps: 2}

	cell.Rotate()
	cell.Rotate()

	assert.False(t, cell.WasActive, "two rotations with no compute in between must leave the previous state empty")
	assert.Equal(t, 0, cell.PrevNumPredictionSteps)
}

func TestSetPredictiveAdoptsMinimumHorizon(t *testing.T) {
	three := &DistalSegment{}
	three.SetNumPredictionSteps(3)
	one := &DistalSegment{}
	one.SetNumPredictionSteps(1)
	five := &DistalSegment{}
	five.SetNumPredictionSteps(5)

	cell := &Cell{}
	cell.SetPredictive(three)
	assert.Equal(t, 3, cell.NumPredictionSteps)
	assert.False(t, cell.SegmentPredicting)

	cell.SetPredictive(one)
	assert.Equal(t, 1, cell.NumPredictionSteps)
	assert.True(t, cell.SegmentPredicting, "a sequence segment must also set segment-predicting")

	cell.SetPredictive(five)
	assert.Equal(t, 1, cell.NumPredictionSteps, "a later, longer prediction must not raise the adopted horizon")
}
