// Package registry provides the tile matrix sets available to the
// engine: the two OGC well-known sets built in at init, plus any
// operator-supplied sets loaded from YAML, following the teacher's
// SourceService dataDir-scanning idiom (internal/service/source.go)
// generalized from source files to TMS descriptors.
package registry

import (
	"strconv"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
)

const (
	metersPerDegree        = 111319.4907932264
	standardizedPixelSizeM = 0.00028
	webMercatorHalfExtent  = 20037508.342789244
)

// WorldCRS84Quad builds the OGC well-known "WorldCRS84Quad" tile matrix
// set for zoom levels 0..maxZoom inclusive: a 2x1 grid at zoom 0
// covering CRS84's full -180..180 x -90..90 extent, doubling each level.
func WorldCRS84Quad(maxZoom int) tilematrix.TileMatrixSet {
	levels := make([]tilematrix.TileMatrix, 0, maxZoom+1)
	for z := 0; z <= maxZoom; z++ {
		matrixHeight := 1 << uint(z)
		matrixWidth := 2 * matrixHeight
		cellSize := 180.0 / (256.0 * float64(matrixHeight))
		levels = append(levels, tilematrix.TileMatrix{
			ID:               strconv.Itoa(z),
			ScaleDenominator: cellSize * metersPerDegree / standardizedPixelSizeM,
			MatrixWidth:      matrixWidth,
			MatrixHeight:     matrixHeight,
			TileWidthPixels:  256,
			TileHeightPixels: 256,
			OriginEast:       -180,
			OriginNorth:      90,
			CornerOfOrigin:   tilematrix.TopLeft,
			CellSize:         cellSize,
		})
	}
	return tilematrix.NewTileMatrixSet("WorldCRS84Quad", string(geom.CRS84), "World CRS84 Quad", levels)
}

// WebMercatorQuad builds the OGC well-known "WebMercatorQuad" tile
// matrix set for zoom levels 0..maxZoom inclusive: the familiar square
// 1x1-at-zoom-0 slippy-map pyramid over EPSG:3857.
func WebMercatorQuad(maxZoom int) tilematrix.TileMatrixSet {
	levels := make([]tilematrix.TileMatrix, 0, maxZoom+1)
	for z := 0; z <= maxZoom; z++ {
		matrixDim := 1 << uint(z)
		cellSize := (2 * webMercatorHalfExtent) / (256.0 * float64(matrixDim))
		levels = append(levels, tilematrix.TileMatrix{
			ID:               strconv.Itoa(z),
			ScaleDenominator: cellSize / standardizedPixelSizeM,
			MatrixWidth:      matrixDim,
			MatrixHeight:     matrixDim,
			TileWidthPixels:  256,
			TileHeightPixels: 256,
			OriginEast:       -webMercatorHalfExtent,
			OriginNorth:      webMercatorHalfExtent,
			CornerOfOrigin:   tilematrix.TopLeft,
			CellSize:         cellSize,
		})
	}
	return tilematrix.NewTileMatrixSet("WebMercatorQuad", string(geom.WebMercator), "Web Mercator Quad", levels)
}

