package network

import (
	"testing"

	"github.com/htm-project/cortical-api/internal/domain/htm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleRegionConfig builds a minimal but fully-wired NetworkConfig: one
// 4x4x1 InputSpace feeding one 2x2 Region with two cells per column, all
// radii unrestricted, learning and boosting open from time 0.
func singleRegionConfig(seed int64) htm.NetworkConfig {
	return htm.NetworkConfig{
		ProximalSynapseParams: htm.DefaultProximalSynapseParams(),
		DistalSynapseParams:   htm.DefaultDistalSynapseParams(),
		Seed:                  seed,
		InputSpaces: []htm.InputSpaceConfig{
			{ID: "in", SizeX: 4, SizeY: 4, NumValues: 1},
		},
		Regions: []htm.RegionConfig{
			{
				ID:                       "r1",
				SizeX:                    2,
				SizeY:                    2,
				CellsPerColumn:           2,
				HypercolumnDiameter:      1,
				PredictionRadius:         -1,
				SegmentActivateThreshold: 1,
				Inhibition:               htm.InhibitionConfig{Automatic: false, Radius: 2},
				MinOverlapToReuseSegment: htm.MinOverlapToReuseRange{Min: 1, Max: 1},
				NewNumberSynapses:        4,
				PercentageInputPerColumn: 75,
				PercentageMinOverlap:     10,
				PercentageLocalActivity:  100,
				Boost:                    htm.BoostConfig{Max: -1, Rate: 0.01},
				SpatialLearning:          htm.OpenPeriod(),
				TemporalLearning:         htm.OpenPeriod(),
				Boosting:                 htm.OpenPeriod(),
				OutputColumnActivity:     true,
				OutputCellActivity:       true,
				Inputs: []htm.RegionInputConfig{
					{ID: "in", Radius: -1},
				},
			},
		},
	}
}

func TestNewNetworkRejectsInvalidConfig(t *testing.T) {
	cfg := singleRegionConfig(1)
	cfg.Regions[0].SizeX = 3
	cfg.Regions[0].HypercolumnDiameter = 2 // 3 % 2 != 0: must fail Validate

	_, err := NewNetwork(cfg)
	assert.Error(t, err)
}

func TestNewNetworkBuildsDeclaredShape(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(42))
	require.NoError(t, err)
	require.Len(t, n.InputSpaces, 1)
	require.Len(t, n.Regions, 1)

	r := n.RegionByID("r1")
	require.NotNil(t, r)
	assert.Len(t, r.Columns, 4)
	for _, col := range r.Columns {
		assert.Len(t, col.Cells, 2)
		assert.NotEmpty(t, col.Proximal.Synapses, "every column must sample a non-empty receptive field")
	}

	assert.Nil(t, n.InputSpaceByID("missing"))
	assert.Nil(t, n.RegionByID("missing"))
}

func TestStepWithNoInputProducesNoActivity(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(7))
	require.NoError(t, err)

	n.Step()
	assert.Equal(t, 1, n.Time())

	r := n.RegionByID("r1")
	for _, col := range r.Columns {
		assert.False(t, col.Active, "no input active means overlap is zero and no column should win inhibition")
	}
}

func TestStepWithFullInputActivatesColumns(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(3))
	require.NoError(t, err)

	in := n.InputSpaceByID("in")
	var all []Coordinate
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			all = append(all, Coordinate{X: x, Y: y, I: 0})
		}
	}
	in.SetActive(all)

	n.Step()

	r := n.RegionByID("r1")
	anyActive := false
	activeCount, activityBudget := 0, 0
	for _, col := range r.Columns {
		if col.Active {
			anyActive = true
			activeCount++
		}
		activityBudget += col.DesiredLocalActivity
	}
	assert.True(t, anyActive, "driving every input bit active should win at least one column its overlap/inhibition contest")
	assert.LessOrEqual(t, activeCount, activityBudget, "local inhibition bounds total activity by the summed desired local activity")
}

func TestSameSeedIsDeterministic(t *testing.T) {
	build := func() *Network {
		n, err := NewNetwork(singleRegionConfig(99))
		require.NoError(t, err)
		in := n.InputSpaceByID("in")
		in.SetActive([]Coordinate{{X: 0, Y: 0, I: 0}, {X: 1, Y: 1, I: 0}})
		return n
	}

	a := build()
	b := build()

	for i := 0; i < 5; i++ {
		a.Step()
		b.Step()
	}

	ra, rb := a.RegionByID("r1"), b.RegionByID("r1")
	for i := range ra.Columns {
		ca, cb := ra.Columns[i], rb.Columns[i]
		assert.Equal(t, ca.Active, cb.Active, "identical seed and identical input history must yield identical activity")
		assert.Equal(t, ca.Overlap, cb.Overlap)
		assert.Equal(t, ca.Boost, cb.Boost)
		assert.Len(t, cb.Proximal.Synapses, len(ca.Proximal.Synapses))
	}

	statsA, statsB := a.PoolStats(), b.PoolStats()
	assert.Equal(t, statsA, statsB)
}

func TestHardcodedSpatialPassesInputThroughUnchanged(t *testing.T) {
	cfg := singleRegionConfig(5)
	cfg.Regions[0].HardcodedSpatial = true
	cfg.Regions[0].SizeX = 4
	cfg.Regions[0].SizeY = 4
	n, err := NewNetwork(cfg)
	require.NoError(t, err)

	in := n.InputSpaceByID("in")
	in.SetActive([]Coordinate{{X: 0, Y: 0, I: 0}, {X: 3, Y: 2, I: 0}})

	n.Step()

	r := n.RegionByID("r1")
	for _, col := range r.Columns {
		want := in.IsActive(col.Position.X, col.Position.Y, 0)
		assert.Equal(t, want, col.Active, "hardcoded-spatial mode must copy the input one-to-one into column activity, bypassing overlap/inhibition")
	}
}

func TestHardcodedSpatialRejectsMismatchedDimensions(t *testing.T) {
	cfg := singleRegionConfig(5)
	cfg.Regions[0].HardcodedSpatial = true // region is 2x2, input is 4x4

	_, err := NewNetwork(cfg)
	assert.Error(t, err)
}

func TestUnrestrictedPredictionRadiusSpansWholeRegion(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(11))
	require.NoError(t, err)
	r := n.RegionByID("r1")

	within := r.columnsWithin(r.Columns[0], -1)
	assert.Len(t, within, len(r.Columns), "radius -1 must mean the whole Region")
}

func TestPoolStatsLiveCountTracksAllocatedCells(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(21))
	require.NoError(t, err)

	stats := n.PoolStats()
	r := n.RegionByID("r1")
	wantCells := 0
	for _, col := range r.Columns {
		wantCells += len(col.Cells)
	}
	assert.Equal(t, wantCells, stats.Cells.Total-stats.Cells.Free)
}

func TestRegionImplementsActivitySourceForDownstreamChaining(t *testing.T) {
	n, err := NewNetwork(singleRegionConfig(13))
	require.NoError(t, err)
	r := n.RegionByID("r1")

	var _ ActivitySource = r

	sx, sy, nv := r.Dims()
	assert.Equal(t, r.SizeX, sx)
	assert.Equal(t, r.SizeY, sy)
	assert.Equal(t, r.CellsPerColumn, nv, "OutputCellActivity is set in this fixture, so the third dimension is cellsPerColumn")
}
