package registry

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-tms/internal/geom"
	"github.com/joeblew999/plat-tms/internal/tilematrix"
	"github.com/joeblew999/plat-tms/internal/tmserr"
)

// defaultMaxZoom bounds the built-in pyramids; callers needing a coarser
// or finer registry build their own with WorldCRS84Quad/WebMercatorQuad
// directly.
const defaultMaxZoom = 21

// Registry holds the tile matrix sets available to the engine: the two
// OGC well-known sets, plus anything loaded from YAML via Load.
type Registry struct {
	sets map[string]tilematrix.TileMatrixSet
}

// New builds a Registry seeded with the built-in WorldCRS84Quad and
// WebMercatorQuad sets.
func New() *Registry {
	r := &Registry{sets: make(map[string]tilematrix.TileMatrixSet)}
	r.add(WorldCRS84Quad(defaultMaxZoom))
	r.add(WebMercatorQuad(defaultMaxZoom))
	return r
}

func (r *Registry) add(tms tilematrix.TileMatrixSet) {
	r.sets[tms.ID] = tms
}

// Get returns the tile matrix set registered under id.
func (r *Registry) Get(id string) (tilematrix.TileMatrixSet, error) {
	tms, ok := r.sets[id]
	if !ok {
		return tilematrix.TileMatrixSet{}, tmserr.Validationf("unknown tile matrix set %q", id)
	}
	return tms, nil
}

// IDs returns the registered tile matrix set identifiers.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.sets))
	for id := range r.sets {
		out = append(out, id)
	}
	return out
}

// tmsDoc is the on-disk YAML shape of a custom tile matrix set
// descriptor, mirroring the OGC TMS JSON structure (spec.md §3) but
// authored as YAML per the teacher's `spec --yaml` convention.
type tmsDoc struct {
	ID    string `yaml:"id"`
	CRS   string `yaml:"crs"`
	Title string `yaml:"title"`
	Tiles []struct {
		ID               string  `yaml:"id"`
		ScaleDenominator float64 `yaml:"scaleDenominator"`
		CellSize         float64 `yaml:"cellSize"`
		MatrixWidth      int     `yaml:"matrixWidth"`
		MatrixHeight     int     `yaml:"matrixHeight"`
		TileWidthPixels  int     `yaml:"tileWidthPixels"`
		TileHeightPixels int     `yaml:"tileHeightPixels"`
		OriginEast       float64 `yaml:"originEast"`
		OriginNorth      float64 `yaml:"originNorth"`
		CornerOfOrigin   string  `yaml:"cornerOfOrigin"`
	} `yaml:"tileMatrices"`
}

// Load reads every *.yaml file under dataDir/tms/ and registers the tile
// matrix set it describes, following SourceService's dataDir-scanning
// pattern (internal/service/source.go). A dataDir/tms directory that
// doesn't exist is not an error: there's simply nothing custom to add.
func (r *Registry) Load(dataDir string) error {
	tmsDir := filepath.Join(dataDir, "tms")
	entries, err := os.ReadDir(tmsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return tmserr.Wrap(tmserr.Invariant, "reading tms directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".yaml") {
			continue
		}
		path := filepath.Join(tmsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return tmserr.Wrap(tmserr.Invariant, "reading "+path, err)
		}
		tms, err := parseTMSDoc(data)
		if err != nil {
			return tmserr.Wrap(tmserr.Validation, "parsing "+path, err)
		}
		r.add(tms)
	}
	return nil
}

func parseTMSDoc(data []byte) (tilematrix.TileMatrixSet, error) {
	var doc tmsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return tilematrix.TileMatrixSet{}, err
	}

	if err := geom.ValidateCRS(geom.CRS(doc.CRS)); err != nil {
		// A custom TMS may legitimately name a CRS this process hasn't
		// seen yet; register it rather than reject the descriptor.
		geom.RegisterCRS(geom.CRS(doc.CRS))
	}

	levels := make([]tilematrix.TileMatrix, len(doc.Tiles))
	for i, t := range doc.Tiles {
		corner := tilematrix.TopLeft
		if strings.EqualFold(t.CornerOfOrigin, "bottomLeft") {
			corner = tilematrix.BottomLeft
		}
		levels[i] = tilematrix.TileMatrix{
			ID:               t.ID,
			ScaleDenominator: t.ScaleDenominator,
			MatrixWidth:      t.MatrixWidth,
			MatrixHeight:     t.MatrixHeight,
			TileWidthPixels:  t.TileWidthPixels,
			TileHeightPixels: t.TileHeightPixels,
			OriginEast:       t.OriginEast,
			OriginNorth:      t.OriginNorth,
			CornerOfOrigin:   corner,
			CellSize:         t.CellSize,
		}
	}

	return tilematrix.NewTileMatrixSet(doc.ID, doc.CRS, doc.Title, levels), nil
}
