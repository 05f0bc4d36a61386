// Package tilematrix holds the OGC Two-Dimensional Tile Matrix Set
// value types: TileMatrixSet, TileMatrix, TileIndex and TileMatrixLimits.
// These are immutable value objects constructed once and never mutated,
// following the value-object shape of the teacher's service.LayerConfig.
package tilematrix

import "github.com/joeblew999/plat-tms/internal/tmserr"

// CornerOfOrigin selects which corner of a tile matrix corresponds to
// tile (0, 0).
type CornerOfOrigin int

const (
	TopLeft CornerOfOrigin = iota
	BottomLeft
)

func (c CornerOfOrigin) String() string {
	if c == BottomLeft {
		return "bottomLeft"
	}
	return "topLeft"
}

// ReverseIntersectionPolicy is the tie-breaking rule applied when a
// position lies exactly on a tile boundary.
type ReverseIntersectionPolicy int

const (
	// None assigns the position to the higher-index tile on both axes.
	None ReverseIntersectionPolicy = iota
	// Col assigns to the lower-index tile on the column axis only.
	Col
	// Row assigns to the lower-index tile on the row axis only.
	Row
	// Both applies Col and Row together.
	Both
)

// TileMatrix describes one scale level of a tile matrix set.
type TileMatrix struct {
	ID               string
	ScaleDenominator float64
	MatrixWidth      int // columns
	MatrixHeight     int // rows
	TileWidthPixels  int
	TileHeightPixels int
	OriginEast       float64
	OriginNorth      float64
	CornerOfOrigin   CornerOfOrigin
	// CellSize is the CRS-unit size of one pixel at this scale level
	// (not the tile size). Tile effective width/height = CellSize *
	// tile dimension in pixels.
	CellSize float64
}

// TileEffectiveWidth returns the CRS-unit width of one raw tile.
func (tm TileMatrix) TileEffectiveWidth() float64 {
	return tm.CellSize * float64(tm.TileWidthPixels)
}

// TileEffectiveHeight returns the CRS-unit height of one raw tile.
func (tm TileMatrix) TileEffectiveHeight() float64 {
	return tm.CellSize * float64(tm.TileHeightPixels)
}

// TileMatrixSet is a pyramid of tile matrices sharing one CRS.
type TileMatrixSet struct {
	ID      string
	CRS     string
	Title   string
	Levels  []TileMatrix
	byID    map[string]int
}

// NewTileMatrixSet builds a TileMatrixSet and indexes its levels by id.
func NewTileMatrixSet(id, crs, title string, levels []TileMatrix) TileMatrixSet {
	byID := make(map[string]int, len(levels))
	for i, tm := range levels {
		byID[tm.ID] = i
	}
	return TileMatrixSet{ID: id, CRS: crs, Title: title, Levels: levels, byID: byID}
}

// MatrixByID returns the tile matrix with the given identifier.
func (t TileMatrixSet) MatrixByID(id string) (TileMatrix, bool) {
	i, ok := t.byID[id]
	if !ok {
		return TileMatrix{}, false
	}
	return t.Levels[i], true
}

// HasMatrix reports whether id names one of this set's levels.
func (t TileMatrixSet) HasMatrix(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// TileIndex is an integer (col, row) pair scoped to one tile matrix.
type TileIndex struct {
	Col int
	Row int
}

// Valid reports whether the index lies within the given matrix's bounds.
func (ti TileIndex) Valid(tm TileMatrix) bool {
	return ti.Col >= 0 && ti.Col < tm.MatrixWidth && ti.Row >= 0 && ti.Row < tm.MatrixHeight
}

// TileMatrixLimits is an axis-aligned rectangle in tile-index space
// within one tile matrix.
type TileMatrixLimits struct {
	TileMatrixID string `json:"tileMatrixId"`
	MinTileCol   int    `json:"minTileCol"`
	MaxTileCol   int    `json:"maxTileCol"`
	MinTileRow   int    `json:"minTileRow"`
	MaxTileRow   int    `json:"maxTileRow"`
}

// Validate checks the invariants from spec.md §3: min <= max on both
// axes and both axes within the matrix's dimensions.
func (l TileMatrixLimits) Validate(tm TileMatrix) error {
	if l.MinTileCol > l.MaxTileCol || l.MinTileRow > l.MaxTileRow {
		return tmserr.Invariantf("tile matrix limits %+v has min > max", l)
	}
	if l.MinTileCol < 0 || l.MaxTileCol >= tm.MatrixWidth || l.MinTileRow < 0 || l.MaxTileRow >= tm.MatrixHeight {
		return tmserr.Invariantf("tile matrix limits %+v outside matrix %dx%d", l, tm.MatrixWidth, tm.MatrixHeight)
	}
	return nil
}

// Metatile groups an m x m block of raw tiles into a single logical
// tile. All tile-index arithmetic divides by m.
type Metatile int

// Validate reports whether m is a valid (positive) metatile factor.
func (m Metatile) Validate() error {
	if m < 1 {
		return tmserr.Validationf("metatile must be >= 1, got %d", int(m))
	}
	return nil
}
