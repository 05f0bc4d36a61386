// Package tmsvalidate implements the validation layer of spec.md §4.6:
// CRS equality, metatile sanity, tile-matrix-id membership and bbox
// containment. Every public engine entry point calls these first and
// fails eagerly, before any output is produced, following the teacher's
// small exported Validate* function shape
// (service.SourceService.ValidateFilename, service.TilerService.ValidateSourceFile).
package tmsvalidate

import (
	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmsmath"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// CRSMatch checks that the geometry's CRS equals the TMS's CRS.
// Reprojection is explicitly out of scope (spec.md §1); a mismatch is a
// ValidationError, not an attempt to convert.
func CRSMatch(geometryCRS geom.CRS, tms tilematrix.TileMatrixSet) error {
	if string(geometryCRS) != tms.CRS {
		return tmserr.Validationf("geometry CRS %q does not match tile matrix set CRS %q", geometryCRS, tms.CRS)
	}
	return nil
}

// Metatile validates that m is a positive integral factor.
func Metatile(m tilematrix.Metatile) error {
	return m.Validate()
}

// TileMatrixID validates that id names one of the TMS's matrices.
func TileMatrixID(tms tilematrix.TileMatrixSet, id string) (tilematrix.TileMatrix, error) {
	tm, ok := tms.MatrixByID(id)
	if !ok {
		return tilematrix.TileMatrix{}, tmserr.Validationf("tile matrix id %q not found in tile matrix set %q", id, tms.ID)
	}
	return tm, nil
}

// BBoxContained validates that bbox lies fully within the matrix's world
// bbox, for operations that require exact containment (spec.md §6's
// bbox.clampToBoundingBox-adjacent checks; spec.md §8 scenario S6, which
// requires the error name the specific out-of-range coordinate rather
// than just report the two bboxes).
func BBoxContained(bbox geom.BBox, tm tilematrix.TileMatrix) error {
	world := tmsmath.TileMatrixBBox(tm)
	if world.Contains(bbox) {
		return nil
	}
	switch {
	case bbox.MinEast < world.MinEast:
		return tmserr.Rangef("bbox min longitude %v is out of range: tile matrix %q spans %v..%v", bbox.MinEast, tm.ID, world.MinEast, world.MaxEast)
	case bbox.MaxEast > world.MaxEast:
		return tmserr.Rangef("bbox max longitude %v is out of range: tile matrix %q spans %v..%v", bbox.MaxEast, tm.ID, world.MinEast, world.MaxEast)
	case bbox.MinNorth < world.MinNorth:
		return tmserr.Rangef("bbox min latitude %v is out of range: tile matrix %q spans %v..%v", bbox.MinNorth, tm.ID, world.MinNorth, world.MaxNorth)
	case bbox.MaxNorth > world.MaxNorth:
		return tmserr.Rangef("bbox max latitude %v is out of range: tile matrix %q spans %v..%v", bbox.MaxNorth, tm.ID, world.MinNorth, world.MaxNorth)
	default:
		return tmserr.Rangef("bbox %+v is not contained in tile matrix %q world bbox %+v", bbox, tm.ID, world)
	}
}

// Entry runs the three eager pre-checks shared by every core engine entry
// point: CRS match, metatile validity, tile-matrix-id membership. It
// does not check bbox containment (callers that clamp instead of reject
// skip that check, per spec.md §4.4 step 1).
func Entry(geometryCRS geom.CRS, tms tilematrix.TileMatrixSet, tileMatrixID string, metatile tilematrix.Metatile) (tilematrix.TileMatrix, error) {
	if err := CRSMatch(geometryCRS, tms); err != nil {
		return tilematrix.TileMatrix{}, err
	}
	if err := Metatile(metatile); err != nil {
		return tilematrix.TileMatrix{}, err
	}
	return TileMatrixID(tms, tileMatrixID)
}
