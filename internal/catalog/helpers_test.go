package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func box(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func region(name, code string, x float64) Region {
	return Region{Name: name, Code: code, Geometry: orb.MultiPolygon{box(x, 0, x+1, 1)}}
}

func dataset(res Resolution, regions ...Region) Dataset {
	return Dataset{Resolution: res, Regions: regions}
}

// 三个合成数据源：粗比例尺只有 Francia，中比例尺新增 Corsica Libre
func scenario(t *testing.T) *Catalog {
	t.Helper()
	c, err := Build(
		dataset(Res110m, region("Francia", "FRA", 0)),
		dataset(Res50m, region("Francia", "FRA", 10), region("Corsica Libre", "COR", 20)),
		dataset(Res10m, region("Corsica Libre", "COR", 30), region("Francia", "FRA", 40)),
	)
	require.NoError(t, err)
	return c
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
