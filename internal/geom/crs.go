package geom

import "github.com/joeblew999/plat-tms/internal/tmserr"

// CRS identifies a coordinate reference system by its OGC URI. The
// registry of recognized codes is a process-wide table seeded at init
// and extended by RegisterCRS, mirroring the teacher's package-level
// service.DefaultBus singleton pattern.
type CRS string

// CRS84 is the default CRS used for JSON-FG's "geometry" placement
// (WGS 84 longitude/latitude, OGC CRS84).
const CRS84 CRS = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"

// WebMercator is EPSG:3857, used by the built-in WebMercatorQuad TMS.
const WebMercator CRS = "http://www.opengis.net/def/crs/EPSG/0/3857"

// recognized is the process-wide CRS registry. Seeded here; RegisterCRS
// adds entries.
var recognized = map[CRS]bool{
	CRS84:       true,
	WebMercator: true,
	"http://www.opengis.net/def/crs/EPSG/0/4326": true,
}

// RegisterCRS adds a CRS code to the recognized registry. Intended to be
// called only during process initialization (e.g. from registry.Load),
// never concurrently with lookups.
func RegisterCRS(code CRS) {
	recognized[code] = true
}

// ValidateCRS reports whether code is a recognized CRS identifier.
func ValidateCRS(code CRS) error {
	if !recognized[code] {
		return tmserr.Validationf("unrecognized CRS %q", string(code))
	}
	return nil
}

// SameCRS reports whether a and b name the same coordinate reference
// system.
func SameCRS(a, b CRS) bool {
	return a == b
}
