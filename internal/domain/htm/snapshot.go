package htm

// ColumnSnapshot is a read-only view of one Column's spatial-pooling
// state, included in a RegionSnapshot when the Region's
// OutputColumnActivity flag is set.
type ColumnSnapshot struct {
	X                    int     `json:"x"`
	Y                    int     `json:"y"`
	Overlap              float64 `json:"overlap"`
	Active               bool    `json:"active"`
	Boost                float64 `json:"boost"`
	ActiveDutyCycle      float64 `json:"active_duty_cycle"`
	FastActiveDutyCycle  float64 `json:"fast_active_duty_cycle"`
	OverlapDutyCycle     float64 `json:"overlap_duty_cycle"`
	DesiredLocalActivity int     `json:"desired_local_activity"`
}

// CellSnapshot is a read-only view of one Cell's temporal-pooling
// state, included per-column when OutputCellActivity is set.
type CellSnapshot struct {
	Index              int  `json:"index"`
	Active             bool `json:"active"`
	Predicting         bool `json:"predicting"`
	Learning           bool `json:"learning"`
	NumPredictionSteps int  `json:"num_prediction_steps"`
	SegmentCount       int  `json:"segment_count"`
}

// ColumnCellSnapshot pairs a column position with its cells, used only
// when OutputCellActivity is set.
type ColumnCellSnapshot struct {
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Cells []CellSnapshot `json:"cells"`
}

// RegionSnapshot is the top-level read-only diagnostic view of one
// Region at the current step.
type RegionSnapshot struct {
	ID                        string               `json:"id"`
	Time                      int                  `json:"time"`
	InhibitionRadius          float64              `json:"inhibition_radius"`
	AverageReceptiveFieldSize float64              `json:"average_receptive_field_size"`
	Columns                   []ColumnSnapshot     `json:"columns,omitempty"`
	Cells                     []ColumnCellSnapshot `json:"cells,omitempty"`
}

// PoolStatsSnapshot reports live/free counts for every pooled object
// type; at any point live = total - free.
type PoolStatsSnapshot struct {
	Cells             PoolTypeStats `json:"cells"`
	Segments          PoolTypeStats `json:"segments"`
	ProximalSynapses  PoolTypeStats `json:"proximal_synapses"`
	DistalSynapses    PoolTypeStats `json:"distal_synapses"`
	UpdateInfos       PoolTypeStats `json:"update_infos"`
}

// PoolTypeStats is total/free/live for one pooled type.
type PoolTypeStats struct {
	Total int `json:"total"`
	Free  int `json:"free"`
	Live  int `json:"live"`
}
