package gotiler

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/registry"
	"github.com/joeblew999/plat-tms/internal/sweep"
)

// coverageTMS is the WebMercatorQuad used to drive tilesInBounds. Its
// column/row numbering matches maptile's own EPSG:3857 pyramid exactly
// (same top-left origin, same doubling per zoom), so a TileMatrixLimits
// range read back at a given zoom is already a maptile.Tile index: no
// translation table, just a cast.
var coverageTMS = registry.WebMercatorQuad(24)

// earthRadiusMeters is the WGS84 sphere radius web mercator projects
// against (the same radius mercantile-style projections use).
const earthRadiusMeters = 6378137.0

// maxMercatorLat is the familiar web mercator latitude clamp: beyond
// this the projection's y coordinate diverges to infinity.
const maxMercatorLat = 85.0511287798

// lngLatToMercator projects a WGS84 longitude/latitude pair to EPSG:3857
// meters, following the standard spherical mercator formula (the same
// one mercantile.Xy computes) rather than degree-doubling tile math,
// since tilesInBounds needs true projected coordinates to sweep against
// coverageTMS's meter-denominated grid.
func lngLatToMercator(lng, lat float64) (x, y float64) {
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	}
	if lat < -maxMercatorLat {
		lat = -maxMercatorLat
	}
	x = earthRadiusMeters * lng * math.Pi / 180
	y = earthRadiusMeters * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

func toGeomPoint(p orb.Point) (geom.Point, error) {
	x, y := lngLatToMercator(p[0], p[1])
	pos, err := geom.NewPosition(x, y)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.NewPoint(pos, geom.WebMercator)
}

func toGeomPositions(pts []orb.Point) ([]geom.Position, error) {
	out := make([]geom.Position, len(pts))
	for i, p := range pts {
		x, y := lngLatToMercator(p[0], p[1])
		pos, err := geom.NewPosition(x, y)
		if err != nil {
			return nil, err
		}
		out[i] = pos
	}
	return out, nil
}

func toGeomLineString(ls orb.LineString) (geom.LineString, error) {
	positions, err := toGeomPositions(ls)
	if err != nil {
		return geom.LineString{}, err
	}
	return geom.NewLineString(positions, geom.WebMercator)
}

func toGeomPolygon(poly orb.Polygon) (geom.Polygon, error) {
	rings := make([][]geom.Position, len(poly))
	for i, ring := range poly {
		positions, err := toGeomPositions(ring)
		if err != nil {
			return geom.Polygon{}, err
		}
		rings[i] = positions
	}
	return geom.NewPolygon(rings, geom.WebMercator)
}

// flattenToMercatorParts projects g into EPSG:3857 and splits it into
// the single-member geometries the coverage engine accepts (it rejects
// multi-geometries and collections outright, so a Multi* here becomes
// one sweep per member rather than one rejected call).
func flattenToMercatorParts(g orb.Geometry) ([]geom.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		p, err := toGeomPoint(v)
		if err != nil {
			return nil, err
		}
		return []geom.Geometry{p}, nil

	case orb.MultiPoint:
		out := make([]geom.Geometry, 0, len(v))
		for _, p := range v {
			gp, err := toGeomPoint(p)
			if err != nil {
				return nil, err
			}
			out = append(out, gp)
		}
		return out, nil

	case orb.LineString:
		ls, err := toGeomLineString(v)
		if err != nil {
			return nil, err
		}
		return []geom.Geometry{ls}, nil

	case orb.MultiLineString:
		out := make([]geom.Geometry, 0, len(v))
		for _, ls := range v {
			gl, err := toGeomLineString(ls)
			if err != nil {
				return nil, err
			}
			out = append(out, gl)
		}
		return out, nil

	case orb.Polygon:
		p, err := toGeomPolygon(v)
		if err != nil {
			return nil, err
		}
		return []geom.Geometry{p}, nil

	case orb.MultiPolygon:
		out := make([]geom.Geometry, 0, len(v))
		for _, poly := range v {
			gp, err := toGeomPolygon(poly)
			if err != nil {
				return nil, err
			}
			out = append(out, gp)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported geometry type %T for sweep coverage", g)
	}
}

// tilesInBounds returns the tiles at zoom that g's strip-sweep coverage
// touches. Falls back to tilesInBoundsRect's bounding-rectangle corner
// scan for geometry types the coverage engine doesn't sweep (orb.Ring,
// orb.Collection) or when the projected coordinates fail validation
// (a latitude clamp artifact at the poles, in practice).
func tilesInBounds(g orb.Geometry, zoom uint32) []maptile.Tile {
	parts, err := flattenToMercatorParts(g)
	if err != nil {
		return tilesInBoundsRect(g.Bound(), zoom)
	}

	tileMatrixID := strconv.Itoa(int(zoom))
	seen := make(map[maptile.Tile]bool)
	var tiles []maptile.Tile
	swept := false

	for _, part := range parts {
		cur, err := sweep.ToTileMatrixLimits(part, coverageTMS, tileMatrixID, 1)
		if err != nil {
			continue
		}
		limits, err := sweep.Collect(cur)
		if err != nil {
			continue
		}
		swept = true
		for _, l := range limits {
			for col := l.MinTileCol; col <= l.MaxTileCol; col++ {
				for row := l.MinTileRow; row <= l.MaxTileRow; row++ {
					t := maptile.New(uint32(col), uint32(row), maptile.Zoom(zoom))
					if !seen[t] {
						seen[t] = true
						tiles = append(tiles, t)
					}
				}
			}
		}
	}

	if !swept {
		return tilesInBoundsRect(g.Bound(), zoom)
	}
	return tiles
}
