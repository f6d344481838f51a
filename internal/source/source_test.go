package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geo-catalog/internal/geom"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// 顺时针外环（shapefile 约定）
func cwSquare(x0, y0, x1, y1 float64) []shp.Point {
	return []shp.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0}}
}

func ccwSquare(x0, y0, x1, y1 float64) []shp.Point {
	return []shp.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}
}

type shpRow struct {
	name, code, formal string
	parts              [][]shp.Point
}

func writeShapefile(t *testing.T, columns []string, rows []shpRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "countries.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	fs := make([]shp.Field, 0, len(columns))
	for _, c := range columns {
		fs = append(fs, shp.StringField(c, 50))
	}
	w.SetFields(fs)
	for _, r := range rows {
		poly := shp.Polygon(*shp.NewPolyLine(r.parts))
		n := int(w.Write(&poly))
		vals := []string{r.name, r.code, r.formal}
		for i := range columns {
			w.WriteAttribute(n, i, vals[i])
		}
	}
	w.Close()
	// go-shp v0.1.1 的 Create 把属性表写成 "<base>dbf"（缺少点号），Open 读取的是 "<base>.dbf"
	base := strings.TrimSuffix(path, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	return path
}

func TestReadShapefile(t *testing.T) {
	path := writeShapefile(t, []string{"NAME_LONG", "SU_A3", "FORMAL_EN"}, []shpRow{
		{"Francia", "FRA", "French Republic", [][]shp.Point{cwSquare(0, 0, 10, 10), ccwSquare(2, 2, 4, 4)}},
		{"Corsica Libre", "COR", "", [][]shp.Point{cwSquare(20, 0, 21, 1), cwSquare(30, 0, 31, 1)}},
	})
	recs, err := Read(path, Fields{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "Francia", recs[0].Name)
	require.Equal(t, "FRA", recs[0].Code)
	require.Equal(t, "French Republic", recs[0].Formal)
	require.Empty(t, recs[0].Alternate, "absent optional column reads as empty")
	require.Len(t, recs[0].Geometry, 1)
	require.Len(t, recs[0].Geometry[0], 2, "hole attached to shell")

	require.Equal(t, 1, recs[1].Row)
	require.Len(t, recs[1].Geometry, 2)
}

func TestReadShapefileHoleBeforeShell(t *testing.T) {
	path := writeShapefile(t, []string{"NAME_LONG", "SU_A3"}, []shpRow{
		{"Annulus", "ANN", "", [][]shp.Point{ccwSquare(2, 2, 8, 8), cwSquare(0, 0, 10, 10)}},
	})
	recs, err := Read(path, Fields{})
	require.NoError(t, err)
	mp := recs[0].Geometry
	require.Len(t, mp, 1)
	require.Len(t, mp[0], 2, "hole listed first still attaches to its shell")

	require.False(t, geom.Contains(mp, orb.Point{5, 5}))
	pt, ok := geom.InteriorPoint(mp)
	require.True(t, ok)
	require.True(t, geom.Contains(mp, pt), "interior point %v", pt)
	require.InDelta(t, 5, pt[1], 1)
}

func TestReadShapefileMissingNameColumn(t *testing.T) {
	path := writeShapefile(t, []string{"ADMIN", "SU_A3"}, []shpRow{
		{"Francia", "FRA", "", [][]shp.Point{cwSquare(0, 0, 1, 1)}},
	})
	_, err := Read(path, Fields{})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "NAME_LONG", fe.Field)

	recs, err := Read(path, Fields{Name: "ADMIN"})
	require.NoError(t, err)
	require.Equal(t, "Francia", recs[0].Name)
}

func TestReadShapefileEmptyName(t *testing.T) {
	path := writeShapefile(t, []string{"NAME_LONG", "SU_A3"}, []shpRow{
		{"Francia", "FRA", "", [][]shp.Point{cwSquare(0, 0, 1, 1)}},
		{"", "XXX", "", [][]shp.Point{cwSquare(0, 0, 1, 1)}},
	})
	_, err := Read(path, Fields{})
	var re *RowError
	require.True(t, errors.As(err, &re))
	require.Equal(t, 1, re.Row)
	require.ErrorIs(t, err, ErrEmptyValue)
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"NAME_LONG": "Francia", "SU_A3": "FRA", "ISO_A2": "FR", "FORMAL_EN": "French Republic", "NAME_EN": null},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]],[[2,2],[2,4],[4,4],[4,2],[2,2]]]}},
    {"type": "Feature",
     "properties": {"NAME_LONG": "Corsica Libre", "SU_A3": "COR"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,0],[21,0],[21,1],[20,1],[20,0]]],[[[30,0],[31,0],[31,1],[30,1],[30,0]]]]}}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadGeoJSON(t *testing.T) {
	recs, err := Read(writeFile(t, "countries.geojson", sampleGeoJSON), Fields{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "FR", recs[0].ISO2)
	require.Empty(t, recs[0].Alternate)
	require.Len(t, recs[0].Geometry[0], 2)
	require.Len(t, recs[1].Geometry, 2)
}

func TestReadISO2Fallback(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"NAME_LONG":"France","SU_A3":"FRA","ISO_A2":"-99","ISO_A2_EH":"FR"},
	   "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
	  {"type":"Feature","properties":{"NAME_LONG":"Norway","SU_A3":"NOR","ISO_A2":"-99","ISO_A2_EH":"NO"},
	   "geometry":{"type":"Polygon","coordinates":[[[5,60],[6,60],[6,61],[5,61],[5,60]]]}},
	  {"type":"Feature","properties":{"NAME_LONG":"Germany","SU_A3":"DEU","ISO_A2":"DE","ISO_A2_EH":"XX"},
	   "geometry":{"type":"Polygon","coordinates":[[[8,47],[9,47],[9,48],[8,48],[8,47]]]}},
	  {"type":"Feature","properties":{"NAME_LONG":"Nowhere","SU_A3":"NWH","ISO_A2":"-99"},
	   "geometry":{"type":"Polygon","coordinates":[[[20,0],[21,0],[21,1],[20,1],[20,0]]]}}]}`
	recs, err := Read(writeFile(t, "eh.geojson", body), Fields{})
	require.NoError(t, err)
	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.ISO2
	}
	require.Equal(t, []string{"FR", "NO", "DE", "-99"}, got)
}

func TestReadGeoJSONRejectsPoints(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"NAME_LONG":"Dot","SU_A3":"DOT"},"geometry":{"type":"Point","coordinates":[1,2]}}]}`
	_, err := Read(writeFile(t, "dots.geojson", body), Fields{})
	require.ErrorIs(t, err, ErrNotPolygonal)
	var re *RowError
	require.True(t, errors.As(err, &re))
	require.Equal(t, "geometry", re.Field)
}

func TestReadGeoJSONOpenRing(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"NAME_LONG":"Open","SU_A3":"OPN"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}}]}`
	_, err := Read(writeFile(t, "open.geojson", body), Fields{})
	var re *RowError
	require.True(t, errors.As(err, &re))
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.shp"), Fields{})
	require.Error(t, err)

	_, err = Read("countries.kml", Fields{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(writeFile(t, "broken.json", "{"), Fields{})
	require.Error(t, err)
}
