package network

import "github.com/htm-project/cortical-api/internal/domain/htm"

// BuildRegionSnapshot builds a read-only diagnostic view of r at its
// current step, honoring OutputColumnActivity/OutputCellActivity.
func BuildRegionSnapshot(r *Region) *htm.RegionSnapshot {
	snap := &htm.RegionSnapshot{
		ID:                        r.ID,
		Time:                      r.time,
		InhibitionRadius:          r.InhibitionRadius,
		AverageReceptiveFieldSize: r.averageReceptiveFieldSize(),
	}

	if r.OutputColumnActivity {
		snap.Columns = make([]htm.ColumnSnapshot, len(r.Columns))
		for i, col := range r.Columns {
			snap.Columns[i] = htm.ColumnSnapshot{
				X:                    col.Position.X,
				Y:                    col.Position.Y,
				Overlap:              col.Overlap,
				Active:               col.Active,
				Boost:                col.Boost,
				ActiveDutyCycle:      col.ActiveDutyCycleSlow,
				FastActiveDutyCycle:  col.ActiveDutyCycleFast,
				OverlapDutyCycle:     col.OverlapDutyCycle,
				DesiredLocalActivity: col.DesiredLocalActivity,
			}
		}
	}

	if r.OutputCellActivity {
		snap.Cells = make([]htm.ColumnCellSnapshot, len(r.Columns))
		for i, col := range r.Columns {
			cells := make([]htm.CellSnapshot, len(col.Cells))
			for j, cell := range col.Cells {
				cells[j] = htm.CellSnapshot{
					Index:              cell.Index,
					Active:             cell.Active,
					Predicting:         cell.Predicting,
					Learning:           cell.Learning,
					NumPredictionSteps: cell.NumPredictionSteps,
					SegmentCount:       len(cell.Segments),
				}
			}
			snap.Cells[i] = htm.ColumnCellSnapshot{X: col.Position.X, Y: col.Position.Y, Cells: cells}
		}
	}

	return snap
}
