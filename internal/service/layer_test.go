package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-tms/internal/registry"
	"github.com/joeblew999/plat-tms/internal/service"
)

func TestCreateLayerWithoutTileMatrixFieldsSkipsValidation(t *testing.T) {
	svc := service.NewLayerService(t.TempDir(), nil)

	layer, err := svc.Create(service.LayerConfig{Name: "Buildings", File: "buildings.pmtiles", GeomType: "polygon"})
	require.NoError(t, err)
	require.Equal(t, "buildings", layer.ID)
}

func TestCreateLayerWithUnknownTileMatrixSetIsRejected(t *testing.T) {
	svc := service.NewLayerService(t.TempDir(), registry.New())

	_, err := svc.Create(service.LayerConfig{
		Name: "Buildings", File: "buildings.pmtiles", GeomType: "polygon",
		TileMatrixSetID: "NoSuchTMS",
	})
	require.Error(t, err)
}

func TestCreateLayerWithKnownTileMatrixSetAndMatrixSucceeds(t *testing.T) {
	svc := service.NewLayerService(t.TempDir(), registry.New())

	layer, err := svc.Create(service.LayerConfig{
		Name: "Buildings", File: "buildings.pmtiles", GeomType: "polygon",
		TileMatrixSetID: "WebMercatorQuad", TileMatrixID: "4",
	})
	require.NoError(t, err)
	require.Equal(t, "WebMercatorQuad", layer.TileMatrixSetID)
}

func TestCreateLayerWithTileMatrixIDButNoSetIsRejected(t *testing.T) {
	svc := service.NewLayerService(t.TempDir(), registry.New())

	_, err := svc.Create(service.LayerConfig{
		Name: "Buildings", File: "buildings.pmtiles", GeomType: "polygon",
		TileMatrixID: "4",
	})
	require.Error(t, err)
}

func TestCreateLayerWithTileMatrixFieldsButNoRegistryIsRejected(t *testing.T) {
	svc := service.NewLayerService(t.TempDir(), nil)

	_, err := svc.Create(service.LayerConfig{
		Name: "Buildings", File: "buildings.pmtiles", GeomType: "polygon",
		TileMatrixSetID: "WebMercatorQuad",
	})
	require.Error(t, err)
}
