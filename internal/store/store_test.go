package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/migrate"

	_ "github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *catalog.Catalog {
	t.Helper()
	sq := func(x float64) orb.MultiPolygon {
		return orb.MultiPolygon{{{{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 1}, {x, 0}}}}
	}
	c, err := catalog.Build(
		catalog.Dataset{Resolution: catalog.Res110m, Regions: []catalog.Region{
			{Name: "Francia", Code: "FRA", Formal: "French Republic", Geometry: sq(0)},
		}},
		catalog.Dataset{Resolution: catalog.Res50m, Regions: []catalog.Region{
			{Name: "Francia", Code: "FRA", Geometry: sq(0)},
			{Name: "Corsica Libre", Code: "COR", Geometry: sq(5)},
		}},
	)
	require.NoError(t, err)
	return c
}

func TestRegionRows(t *testing.T) {
	rows, err := regionRows(sample(t))
	require.NoError(t, err)
	// 110m:1 + 50m:2 + adaptive:2
	require.Len(t, rows, 5)
	last := rows[len(rows)-1]
	require.Equal(t, "adaptive", last.resolution)
	require.Equal(t, 1, last.idx)
	require.Equal(t, catalog.Res50m, last.region.Resolution)
	require.Contains(t, string(last.geometry), `"type":"MultiPolygon"`)
}

// 需要真实数据库：GEO_TEST_PG_DSN=postgres://... go test ./internal/store
func TestExportCatalog(t *testing.T) {
	dsn := os.Getenv("GEO_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GEO_TEST_PG_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrate.EnsureSchema(db))

	c := sample(t)
	conv := catalog.BuildNameConverter(c, catalog.CuratedFirst)
	res, err := AttachDB(db).ExportCatalog(context.Background(), c, conv, c.RepresentativePoints())
	require.NoError(t, err)
	require.Equal(t, 5, res.Regions)
	require.Equal(t, conv.Len(), res.Aliases)
	require.Equal(t, 2, res.Points)

	counts, err := AttachDB(db).CountRegions(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]int{"110m": 1, "50m": 2, "adaptive": 2}, counts)
}
