// Package network implements the structural object graph of the HTM
// engine: InputSpace, Region, Column, Cell, the proximal and distal
// Segment/Synapse types, SegmentUpdateInfo, and Network itself. The
// per-synapse sampling and duty-cycle math live in
// internal/cortical/spatial; the reservoir-sampling and tie-break
// primitives live in internal/cortical/temporal. Both are imported
// here so Column/Cell methods can call them without a cycle back into
// this package.
package network

import "fmt"

// Coordinate locates one value within a 3-D dense bitmap: (x, y) is a
// grid position, i indexes one of numValues values at that position.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	I int `json:"i"`
}

// ActivitySource is implemented by anything a proximal synapse can
// point at: an InputSpace, or an upstream Region acting as input to a
// downstream one.
type ActivitySource interface {
	IsActive(x, y, i int) bool
	Dims() (sizeX, sizeY, numValues int)
}

// InputSpace is an external binary source: a dense sizeX*sizeY*numValues
// bitmap, read-only to the engine within a step.
type InputSpace struct {
	ID        string
	SizeX     int
	SizeY     int
	NumValues int
	bits      []bool
}

// NewInputSpace allocates an all-zero InputSpace of the given
// dimensions.
func NewInputSpace(id string, sizeX, sizeY, numValues int) *InputSpace {
	return &InputSpace{
		ID:        id,
		SizeX:     sizeX,
		SizeY:     sizeY,
		NumValues: numValues,
		bits:      make([]bool, sizeX*sizeY*numValues),
	}
}

// Dims implements ActivitySource.
func (s *InputSpace) Dims() (sizeX, sizeY, numValues int) {
	return s.SizeX, s.SizeY, s.NumValues
}

func (s *InputSpace) index(x, y, i int) int {
	return (y*s.SizeX+x)*s.NumValues + i
}

// IsActive reads one cell of the bitmap. Coordinates outside the
// bitmap are a programmer error and panic.
func (s *InputSpace) IsActive(x, y, i int) bool {
	if x < 0 || x >= s.SizeX || y < 0 || y >= s.SizeY || i < 0 || i >= s.NumValues {
		panic(fmt.Sprintf("InputSpace %s: coordinate (%d,%d,%d) out of range [%d,%d,%d)", s.ID, x, y, i, s.SizeX, s.SizeY, s.NumValues))
	}
	return s.bits[s.index(x, y, i)]
}

// SetActive overwrites the entire bitmap with the given set of active
// coordinates; every other cell becomes inactive.
func (s *InputSpace) SetActive(active []Coordinate) {
	for i := range s.bits {
		s.bits[i] = false
	}
	for _, c := range active {
		s.bits[s.index(c.X, c.Y, c.I)] = true
	}
}

// SetDense overwrites the entire bitmap from a flat row-major
// (y, x, i) boolean slice of length SizeX*SizeY*NumValues.
func (s *InputSpace) SetDense(dense []bool) {
	if len(dense) != len(s.bits) {
		panic(fmt.Sprintf("InputSpace %s: dense input length %d does not match %d", s.ID, len(dense), len(s.bits)))
	}
	copy(s.bits, dense)
}

// ActiveCoordinates returns every currently active (x,y,i) triple.
func (s *InputSpace) ActiveCoordinates() []Coordinate {
	var out []Coordinate
	for y := 0; y < s.SizeY; y++ {
		for x := 0; x < s.SizeX; x++ {
			for i := 0; i < s.NumValues; i++ {
				if s.bits[s.index(x, y, i)] {
					out = append(out, Coordinate{X: x, Y: y, I: i})
				}
			}
		}
	}
	return out
}
