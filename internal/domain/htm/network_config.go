package htm

import "fmt"

// SynapseParamsConfig is the wire representation of a proximal or
// distal synapse population's permanence tunables.
type SynapseParamsConfig struct {
	InitialPermanence   float64 `json:"initial_permanence" validate:"gt=0,lte=1"`
	ConnectedPermanence float64 `json:"connected_permanence" validate:"gt=0,lte=1"`
	PermanenceIncrease  float64 `json:"permanence_increase" validate:"gt=0,lte=1"`
	PermanenceDecrease  float64 `json:"permanence_decrease" validate:"gt=0,lte=1"`
}

// DefaultProximalSynapseParams returns the conventional CLA defaults.
func DefaultProximalSynapseParams() SynapseParamsConfig {
	return SynapseParamsConfig{
		InitialPermanence:   0.3,
		ConnectedPermanence: 0.2,
		PermanenceIncrease:  0.05,
		PermanenceDecrease:  0.03,
	}
}

// DefaultDistalSynapseParams returns the conventional CLA defaults.
func DefaultDistalSynapseParams() SynapseParamsConfig {
	return SynapseParamsConfig{
		InitialPermanence:   0.3,
		ConnectedPermanence: 0.2,
		PermanenceIncrease:  0.1,
		PermanenceDecrease:  0.1,
	}
}

// Validate checks that every permanence tunable lies in (0,1].
func (p SynapseParamsConfig) Validate(field string) error {
	check := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return NewPoolingErrorWithField(PoolingErrorConfiguration,
				fmt.Sprintf("%s must be in (0,1], got %.4f", name, v), field+"."+name)
		}
		return nil
	}
	if err := check("initial_permanence", p.InitialPermanence); err != nil {
		return err
	}
	if err := check("connected_permanence", p.ConnectedPermanence); err != nil {
		return err
	}
	if err := check("permanence_increase", p.PermanenceIncrease); err != nil {
		return err
	}
	return check("permanence_decrease", p.PermanenceDecrease)
}

// LearningPeriod is a time-gated window; an End of -1 means
// open-ended.
type LearningPeriod struct {
	Start int `json:"start"`
	End   int `json:"end" validate:"min=-1"`
}

// OpenPeriod returns a LearningPeriod active from time 0 forever.
func OpenPeriod() LearningPeriod { return LearningPeriod{Start: 0, End: -1} }

// Contains reports whether t falls within the window.
func (w LearningPeriod) Contains(t int) bool {
	if t < w.Start {
		return false
	}
	if w.End == -1 {
		return true
	}
	return t <= w.End
}

// InhibitionConfig selects fixed-radius or automatic inhibition.
type InhibitionConfig struct {
	Automatic bool `json:"automatic"`
	Radius    int  `json:"radius" validate:"min=0"`
}

// MinOverlapToReuseRange bounds the randomized per-column
// minOverlapToReuseSegment threshold.
type MinOverlapToReuseRange struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
}

// BoostConfig bounds column boosting. A Max of -1 means unlimited.
type BoostConfig struct {
	Max  float64 `json:"max"`
	Rate float64 `json:"rate" validate:"gt=0"`
}

// RegionInputConfig names one upstream source (an InputSpace or
// another Region) this Region draws proximal receptive fields from,
// and the hypercolumn radius to sample within.
type RegionInputConfig struct {
	ID     string `json:"id" validate:"required"`
	Radius int    `json:"radius" validate:"min=-1"`
}

// RegionConfig is the wire representation of one Region.
type RegionConfig struct {
	ID                       string                 `json:"id" validate:"required"`
	SizeX                    int                    `json:"size_x" validate:"required,gt=0"`
	SizeY                    int                    `json:"size_y" validate:"required,gt=0"`
	CellsPerColumn           int                    `json:"cells_per_column" validate:"required,gt=0"`
	HypercolumnDiameter      int                    `json:"hypercolumn_diameter" validate:"required,gt=0"`
	PredictionRadius         int                    `json:"prediction_radius" validate:"min=-1"`
	SegmentActivateThreshold int                    `json:"segment_activate_threshold" validate:"required,gt=0"`
	Inhibition               InhibitionConfig       `json:"inhibition"`
	MinOverlapToReuseSegment MinOverlapToReuseRange `json:"min_overlap_to_reuse_segment"`
	NewNumberSynapses        int                    `json:"new_number_synapses" validate:"required,gt=0"`
	PercentageInputPerColumn float64                `json:"percentage_input_per_column" validate:"gt=0,lte=100"`
	PercentageMinOverlap     float64                `json:"percentage_min_overlap" validate:"gt=0,lte=100"`
	PercentageLocalActivity  float64                `json:"percentage_local_activity" validate:"gt=0,lte=100"`
	Boost                    BoostConfig            `json:"boost"`
	SpatialLearning          LearningPeriod         `json:"spatial_learning"`
	TemporalLearning         LearningPeriod         `json:"temporal_learning"`
	Boosting                 LearningPeriod         `json:"boosting"`
	ProximalSynapseParams    *SynapseParamsConfig   `json:"proximal_synapse_params,omitempty"`
	DistalSynapseParams      *SynapseParamsConfig   `json:"distal_synapse_params,omitempty"`
	HardcodedSpatial         bool                   `json:"hardcoded_spatial"`
	OutputColumnActivity     bool                   `json:"output_column_activity"`
	OutputCellActivity       bool                   `json:"output_cell_activity"`
	Inputs                   []RegionInputConfig    `json:"inputs" validate:"required,min=1"`
}

// Validate checks structural invariants that cut across fields, like
// both grid dimensions dividing evenly into hypercolumns.
func (r *RegionConfig) Validate() error {
	if r.SizeX%r.HypercolumnDiameter != 0 {
		return NewPoolingErrorWithField(PoolingErrorConfiguration,
			fmt.Sprintf("size_x (%d) must be divisible by hypercolumn_diameter (%d)", r.SizeX, r.HypercolumnDiameter),
			"size_x")
	}
	if r.SizeY%r.HypercolumnDiameter != 0 {
		return NewPoolingErrorWithField(PoolingErrorConfiguration,
			fmt.Sprintf("size_y (%d) must be divisible by hypercolumn_diameter (%d)", r.SizeY, r.HypercolumnDiameter),
			"size_y")
	}
	if !r.Inhibition.Automatic && r.Inhibition.Radius <= 0 {
		return NewPoolingErrorWithField(PoolingErrorConfiguration,
			"inhibition radius must be positive when not automatic", "inhibition.radius")
	}
	if r.MinOverlapToReuseSegment.Min > r.MinOverlapToReuseSegment.Max {
		return NewPoolingErrorWithField(PoolingErrorConfiguration,
			"min_overlap_to_reuse_segment.min must be <= max", "min_overlap_to_reuse_segment")
	}
	if len(r.Inputs) == 0 {
		return NewPoolingErrorWithField(PoolingErrorConfiguration, "region must declare at least one input", "inputs")
	}
	if r.ProximalSynapseParams != nil {
		if err := r.ProximalSynapseParams.Validate("proximal_synapse_params"); err != nil {
			return err
		}
	}
	if r.DistalSynapseParams != nil {
		if err := r.DistalSynapseParams.Validate("distal_synapse_params"); err != nil {
			return err
		}
	}
	return nil
}

// InputSpaceConfig is the wire representation of one InputSpace.
type InputSpaceConfig struct {
	ID        string `json:"id" validate:"required"`
	SizeX     int    `json:"size_x" validate:"required,gte=1,lte=1000000"`
	SizeY     int    `json:"size_y" validate:"required,gte=1,lte=1000000"`
	NumValues int    `json:"num_values" validate:"required,gte=1,lte=1000"`
}

// NetworkConfig is the top-level wire description of a Network:
// global synapse params, InputSpaces, and Regions in declaration
// order.
type NetworkConfig struct {
	ProximalSynapseParams SynapseParamsConfig `json:"proximal_synapse_params"`
	DistalSynapseParams   SynapseParamsConfig `json:"distal_synapse_params"`
	InputSpaces           []InputSpaceConfig  `json:"input_spaces"`
	Regions               []RegionConfig      `json:"regions" validate:"required,min=1"`
	Seed                  int64               `json:"seed"`
}

// Validate checks global parameters and that every input-reference a
// Region declares resolves to a declared InputSpace or an
// earlier-declared Region.
func (n *NetworkConfig) Validate() error {
	if err := n.ProximalSynapseParams.Validate("proximal_synapse_params"); err != nil {
		return err
	}
	if err := n.DistalSynapseParams.Validate("distal_synapse_params"); err != nil {
		return err
	}
	if len(n.Regions) == 0 {
		return NewPoolingErrorWithField(PoolingErrorConfiguration, "network must declare at least one region", "regions")
	}

	known := make(map[string]bool, len(n.InputSpaces)+len(n.Regions))
	for _, is := range n.InputSpaces {
		if known[is.ID] {
			return NewPoolingErrorWithField(PoolingErrorConfiguration, fmt.Sprintf("duplicate input id %q", is.ID), "input_spaces")
		}
		known[is.ID] = true
	}

	for _, r := range n.Regions {
		if err := r.Validate(); err != nil {
			return err
		}
		if known[r.ID] {
			return NewPoolingErrorWithField(PoolingErrorConfiguration, fmt.Sprintf("duplicate region id %q", r.ID), "regions")
		}
		for _, in := range r.Inputs {
			if !known[in.ID] {
				return NewPoolingErrorWithField(PoolingErrorConfiguration,
					fmt.Sprintf("region %q references unknown input %q", r.ID, in.ID), "inputs")
			}
		}
		known[r.ID] = true
	}
	return nil
}
