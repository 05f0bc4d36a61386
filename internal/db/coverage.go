package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

const coverageCacheDDL = `
CREATE TABLE IF NOT EXISTS coverage_cache (
	geometry_hash  VARCHAR,
	tms_id         VARCHAR,
	tile_matrix_id VARCHAR,
	metatile       INTEGER,
	bbox_wkt       VARCHAR,
	min_tile_col   INTEGER,
	max_tile_col   INTEGER,
	min_tile_row   INTEGER,
	max_tile_row   INTEGER
)
`

// CoverageCache persists computed TileMatrixLimits rows keyed by geometry
// hash, TMS id, tile matrix id and metatile, so a repeated computation
// over the same geometry can skip the sweep. No command or handler in
// this repository constructs one. Adapted from the teacher's bare db.Get singleton: the same
// *sql.DB connection, now fronting one purpose-built table instead of
// standing in for "whatever SQL the caller wants to run".
type CoverageCache struct {
	conn *sql.DB
}

// NewCoverageCache ensures the backing table exists and wraps conn.
func NewCoverageCache(conn *sql.DB) (*CoverageCache, error) {
	if _, err := conn.Exec(coverageCacheDDL); err != nil {
		return nil, tmserr.Wrap(tmserr.Invariant, "creating coverage_cache table", err)
	}
	return &CoverageCache{conn: conn}, nil
}

// GeometryHash derives a stable cache key from a geometry's canonical
// GeoJSON encoding.
func GeometryHash(geometryJSON []byte) string {
	sum := sha256.Sum256(geometryJSON)
	return hex.EncodeToString(sum[:])
}

// Lookup returns any cached limits for the given key.
func (c *CoverageCache) Lookup(ctx context.Context, geometryHash, tmsID, tileMatrixID string, metatile int) ([]tilematrix.TileMatrixLimits, bool, error) {
	rows, err := c.conn.QueryContext(ctx, `
		SELECT min_tile_col, max_tile_col, min_tile_row, max_tile_row
		FROM coverage_cache
		WHERE geometry_hash = ? AND tms_id = ? AND tile_matrix_id = ? AND metatile = ?
		ORDER BY min_tile_row, min_tile_col
	`, geometryHash, tmsID, tileMatrixID, metatile)
	if err != nil {
		return nil, false, tmserr.Wrap(tmserr.Invariant, "querying coverage_cache", err)
	}
	defer rows.Close()

	var out []tilematrix.TileMatrixLimits
	for rows.Next() {
		l := tilematrix.TileMatrixLimits{TileMatrixID: tileMatrixID}
		if err := rows.Scan(&l.MinTileCol, &l.MaxTileCol, &l.MinTileRow, &l.MaxTileRow); err != nil {
			return nil, false, tmserr.Wrap(tmserr.Invariant, "scanning coverage_cache row", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, false, tmserr.Wrap(tmserr.Invariant, "iterating coverage_cache rows", err)
	}
	return out, len(out) > 0, nil
}

// Store replaces any prior entry for the given key with limits, also
// recording the geometry's clamped bbox as WKT (round-tripped through
// the spatial extension's ST_GeomFromText/ST_AsText) for introspection
// via /api/v1/query.
func (c *CoverageCache) Store(ctx context.Context, geometryHash, tmsID, tileMatrixID string, metatile int, bbox geom.BBox, limits []tilematrix.TileMatrixLimits) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return tmserr.Wrap(tmserr.Invariant, "beginning coverage_cache transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM coverage_cache WHERE geometry_hash = ? AND tms_id = ? AND tile_matrix_id = ? AND metatile = ?
	`, geometryHash, tmsID, tileMatrixID, metatile); err != nil {
		return tmserr.Wrap(tmserr.Invariant, "clearing prior coverage_cache rows", err)
	}

	bboxWKT := fmt.Sprintf("POLYGON((%g %g, %g %g, %g %g, %g %g, %g %g))",
		bbox.MinEast, bbox.MinNorth,
		bbox.MaxEast, bbox.MinNorth,
		bbox.MaxEast, bbox.MaxNorth,
		bbox.MinEast, bbox.MaxNorth,
		bbox.MinEast, bbox.MinNorth,
	)

	for _, l := range limits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO coverage_cache (
				geometry_hash, tms_id, tile_matrix_id, metatile,
				bbox_wkt, min_tile_col, max_tile_col, min_tile_row, max_tile_row
			) VALUES (?, ?, ?, ?, ST_AsText(ST_GeomFromText(?)), ?, ?, ?, ?)
		`, geometryHash, tmsID, tileMatrixID, metatile, bboxWKT, l.MinTileCol, l.MaxTileCol, l.MinTileRow, l.MaxTileRow); err != nil {
			return tmserr.Wrap(tmserr.Invariant, "inserting coverage_cache row", err)
		}
	}

	return tx.Commit()
}
