package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"geo-catalog/internal/catalog"

	"github.com/stretchr/testify/require"
)

func clearSources(t *testing.T) {
	for _, k := range []string{"CATALOG_110M", "CATALOG_50M", "CATALOG_10M", "CATALOG_RESOLUTIONS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearSources(t)
	dir := t.TempDir()
	t.Setenv("CATALOG_DIR", dir)
	t.Setenv("ADDR", "")
	t.Setenv("NAME_MERGE_ORDER", "")
	t.Setenv("REVERSE_RADIUS_KM", "")
	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Addr)
	require.Equal(t, "/api", c.APIBase)
	require.Equal(t, catalog.CuratedFirst, c.MergeOrder)
	require.Equal(t, 50.0, c.ReverseRadiusKm)
	require.Equal(t, time.Hour, c.LocateCacheTTL)
	require.Equal(t, map[catalog.Resolution]string{
		catalog.Res110m: filepath.Join(dir, "ne_110m_admin_0_countries.shp"),
		catalog.Res50m:  filepath.Join(dir, "ne_50m_admin_0_countries.shp"),
		catalog.Res10m:  filepath.Join(dir, "ne_10m_admin_0_countries.shp"),
	}, c.Sources, "default paths are kept even when the files are absent")
}

func TestLoadOverrides(t *testing.T) {
	clearSources(t)
	dir := t.TempDir()
	coarse := filepath.Join(dir, "ne_110m_admin_0_countries.shp")
	require.NoError(t, os.WriteFile(coarse, nil, 0o644))
	t.Setenv("CATALOG_DIR", dir)
	t.Setenv("CATALOG_10M", "/srv/maps/fine.geojson")
	t.Setenv("NAME_MERGE_ORDER", "scanned_first")
	t.Setenv("REVERSE_CACHE_TTL_S", "60")
	t.Setenv("REVERSE_RADIUS_KM", "0")
	t.Setenv("CATALOG_FIELD_NAME", "ADMIN")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, map[catalog.Resolution]string{
		catalog.Res110m: coarse,
		catalog.Res50m:  filepath.Join(dir, "ne_50m_admin_0_countries.shp"),
		catalog.Res10m:  "/srv/maps/fine.geojson",
	}, c.Sources)
	require.Equal(t, catalog.ScannedFirst, c.MergeOrder)
	require.Equal(t, time.Minute, c.ReverseCacheTTL)
	require.Equal(t, 0.0, c.ReverseRadiusKm)
	require.Equal(t, "ADMIN", c.Fields.Name)
}

const squareGeoJSON = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"NAME_LONG":"Francia","SU_A3":"FRA"},
   "geometry":{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}}]}`

func TestMissingDefaultSourceFailsLoad(t *testing.T) {
	clearSources(t)
	dir := t.TempDir()
	for _, res := range []string{"110M", "10M"} {
		p := filepath.Join(dir, res+".geojson")
		require.NoError(t, os.WriteFile(p, []byte(squareGeoJSON), 0o644))
		t.Setenv("CATALOG_"+res, p)
	}
	t.Setenv("CATALOG_DIR", dir)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "ne_50m_admin_0_countries.shp"), c.Sources[catalog.Res50m])

	_, err = catalog.Load(c.Sources, c.Fields)
	var sle *catalog.SourceLoadError
	require.True(t, errors.As(err, &sle), "got %v", err)
	require.Equal(t, catalog.Res50m, sle.Resolution)
}

func TestCatalogResolutionsOptIn(t *testing.T) {
	clearSources(t)
	dir := t.TempDir()
	t.Setenv("CATALOG_DIR", dir)
	t.Setenv("CATALOG_RESOLUTIONS", "110m, 10m")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, map[catalog.Resolution]string{
		catalog.Res110m: filepath.Join(dir, "ne_110m_admin_0_countries.shp"),
		catalog.Res10m:  filepath.Join(dir, "ne_10m_admin_0_countries.shp"),
	}, c.Sources)

	t.Setenv("CATALOG_RESOLUTIONS", "110m,25m")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("CATALOG_RESOLUTIONS", "adaptive")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadBadMergeOrder(t *testing.T) {
	t.Setenv("NAME_MERGE_ORDER", "alphabetical")
	_, err := Load()
	require.Error(t, err)
}
