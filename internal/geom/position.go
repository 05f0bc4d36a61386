// Package geom implements the immutable geometry value objects consumed
// by the tile-matrix-set engine: Position, BoundingBox, Point,
// LineString, Polygon and GeometryCollection. Every constructor
// validates its inputs eagerly, mirroring the teacher's
// validate-at-construction style (service.SourceService.ValidateFilename,
// service.TilerService.ValidateSourceFile) generalized to geometry.
package geom

import (
	"math"

	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// Position is an ordered (east, north) pair of finite reals.
type Position struct {
	East  float64
	North float64
}

// NewPosition validates that both coordinates are finite.
func NewPosition(east, north float64) (Position, error) {
	if math.IsNaN(east) || math.IsInf(east, 0) {
		return Position{}, tmserr.Validationf("position east coordinate %v is not finite", east)
	}
	if math.IsNaN(north) || math.IsInf(north, 0) {
		return Position{}, tmserr.Validationf("position north coordinate %v is not finite", north)
	}
	return Position{East: east, North: north}, nil
}

// AvoidNegativeZero normalizes -0 to 0 so bit-exact equality checks on
// emitted coordinates are deterministic.
func AvoidNegativeZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

// Normalized returns p with negative-zero components cleaned up.
func (p Position) Normalized() Position {
	return Position{East: AvoidNegativeZero(p.East), North: AvoidNegativeZero(p.North)}
}

// Equal reports exact (bit-for-bit, after normalizing -0) equality.
func (p Position) Equal(o Position) bool {
	return p.Normalized() == o.Normalized()
}
