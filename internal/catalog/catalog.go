package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"geo-catalog/internal/geom"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"
	"geo-catalog/internal/source"
)

type table struct {
	regions []Region
	names   map[string]int
	codes   map[string]int
}

func newTable(n int) *table {
	return &table{regions: make([]Region, 0, n), names: make(map[string]int, n), codes: make(map[string]int, n)}
}

// Catalog：各比例尺的区域序列与名称/代码索引，外加自适应序列
type Catalog struct {
	tables  map[Resolution]*table
	loaded  []Resolution
	builtAt time.Time
}

// 文档注释：从磁盘加载各比例尺数据源并构建目录
// 背景：每个比例尺对应一个边界文件（.shp 或 .geojson）；按粗到细的优先级读取后交给 Build 合并。
// 约束：全部成功或全部失败；打开失败、空文件、缺名称列返回 SourceLoadError，其余列缺失或几何非法返回 SchemaError。
func Load(sources map[Resolution]string, fields source.Fields) (*Catalog, error) {
	t0 := time.Now()
	c, err := load(sources, fields)
	metrics.CatalogBuildDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.CatalogBuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogBuildsTotal.WithLabelValues("ok").Inc()
	return c, nil
}

func load(sources map[Resolution]string, fields source.Fields) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, &SourceLoadError{Err: ErrNoSources}
	}
	for res := range sources {
		if res.rank() < 0 {
			return nil, &SourceLoadError{Resolution: res, Path: sources[res], Err: ErrUnknownResolution}
		}
	}
	nameField := fields.Name
	if nameField == "" {
		nameField = source.DefaultFields().Name
	}
	var sets []Dataset
	for _, res := range priority {
		path, ok := sources[res]
		if !ok {
			continue
		}
		logger.L().Info("catalog_load_begin", "resolution", res, "path", path)
		recs, err := source.Read(path, fields)
		if err != nil {
			return nil, classify(res, path, nameField, err)
		}
		if len(recs) == 0 {
			return nil, &SourceLoadError{Resolution: res, Path: path, Err: ErrEmptySource}
		}
		ds := Dataset{Resolution: res, Regions: make([]Region, 0, len(recs))}
		for _, r := range recs {
			ds.Regions = append(ds.Regions, Region{
				Name:      r.Name,
				Code:      r.Code,
				ISO2:      r.ISO2,
				Formal:    r.Formal,
				Alternate: r.Alternate,
				Geometry:  r.Geometry,
			})
		}
		logger.L().Info("catalog_load_done", "resolution", res, "regions", len(recs))
		sets = append(sets, ds)
	}
	return Build(sets...)
}

// classify：把读取器错误映射为目录错误类型
func classify(res Resolution, path, nameField string, err error) error {
	var fe *source.FieldError
	if errors.As(err, &fe) {
		if fe.Field == nameField {
			return &SourceLoadError{Resolution: res, Path: path, Err: err}
		}
		return &SchemaError{Resolution: res, Row: -1, Field: fe.Field, Err: err}
	}
	var re *source.RowError
	if errors.As(err, &re) {
		return &SchemaError{Resolution: res, Row: re.Row, Field: re.Field, Err: re.Err}
	}
	return &SourceLoadError{Resolution: res, Path: path, Err: err}
}

// 文档注释：由内存中的数据集构建目录（自适应合并）
// 背景：按粗到细依次扫描各比例尺；每行写入本比例尺的名称索引（同比例尺内重名后写覆盖先写），
// 仅当名称此前从未出现过（任一更粗比例尺或本比例尺更早的行）时才追加到自适应序列。
// 约束：数据集按优先级重排；未知、重复比例尺或空数据集返回 SourceLoadError；空名称或非法几何返回 SchemaError。
func Build(datasets ...Dataset) (*Catalog, error) {
	if len(datasets) == 0 {
		return nil, &SourceLoadError{Err: ErrNoSources}
	}
	sets := append([]Dataset(nil), datasets...)
	seen := make(map[Resolution]bool, len(sets))
	for _, ds := range sets {
		if ds.Resolution.rank() < 0 {
			return nil, &SourceLoadError{Resolution: ds.Resolution, Err: ErrUnknownResolution}
		}
		if seen[ds.Resolution] {
			return nil, &SourceLoadError{Resolution: ds.Resolution, Err: ErrDuplicateResolution}
		}
		seen[ds.Resolution] = true
		if len(ds.Regions) == 0 {
			return nil, &SourceLoadError{Resolution: ds.Resolution, Err: ErrEmptySource}
		}
	}
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].Resolution.rank() < sets[j].Resolution.rank() })

	c := &Catalog{tables: make(map[Resolution]*table, len(sets)+1)}
	adaptive := newTable(len(sets[0].Regions))
	for _, ds := range sets {
		t := newTable(len(ds.Regions))
		added := 0
		for i, r := range ds.Regions {
			if r.Name == "" {
				return nil, &SchemaError{Resolution: ds.Resolution, Row: i, Field: "name", Err: ErrEmptyName}
			}
			if err := geom.Validate(r.Geometry); err != nil {
				return nil, &SchemaError{Resolution: ds.Resolution, Row: i, Field: "geometry", Err: err}
			}
			r.Resolution = ds.Resolution
			r.Row = i
			t.regions = append(t.regions, r)
			t.names[r.Name] = i
			if r.Code != "" {
				t.codes[r.Code] = i
			}
			if _, dup := adaptive.names[r.Name]; dup {
				continue
			}
			pos := len(adaptive.regions)
			adaptive.names[r.Name] = pos
			if _, dup := adaptive.codes[r.Code]; r.Code != "" && !dup {
				adaptive.codes[r.Code] = pos
			}
			adaptive.regions = append(adaptive.regions, r)
			added++
		}
		c.tables[ds.Resolution] = t
		c.loaded = append(c.loaded, ds.Resolution)
		metrics.CatalogRegions.WithLabelValues(string(ds.Resolution)).Set(float64(len(t.regions)))
		logger.L().Debug("catalog_merge", "resolution", ds.Resolution, "rows", len(t.regions), "distinct", len(t.names), "adaptive_added", added)
	}
	c.tables[Adaptive] = adaptive
	c.builtAt = time.Now()
	metrics.CatalogRegions.WithLabelValues(string(Adaptive)).Set(float64(len(adaptive.regions)))
	logger.L().Info("catalog_ready", "resolutions", len(c.loaded), "adaptive", len(adaptive.regions))
	return c, nil
}

func (c *Catalog) table(res Resolution) (*table, error) {
	if res == "" {
		res = Adaptive
	}
	t, ok := c.tables[res]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, res)
	}
	return t, nil
}

// Resolutions：已加载的比例尺（按合并优先级，不含 adaptive）
func (c *Catalog) Resolutions() []Resolution { return append([]Resolution(nil), c.loaded...) }

// Has：比例尺是否可查询（adaptive 总是可查询）
func (c *Catalog) Has(res Resolution) bool {
	_, err := c.table(res)
	return err == nil
}

func (c *Catalog) BuiltAt() time.Time { return c.builtAt }

func (c *Catalog) Len(res Resolution) int {
	t, err := c.table(res)
	if err != nil {
		return 0
	}
	return len(t.regions)
}

// Regions：返回区域序列的副本；未加载的比例尺返回 nil
func (c *Catalog) Regions(res Resolution) []Region {
	t, err := c.table(res)
	if err != nil {
		return nil
	}
	return append([]Region(nil), t.regions...)
}

func (c *Catalog) Region(res Resolution, i int) (Region, bool) {
	t, err := c.table(res)
	if err != nil || i < 0 || i >= len(t.regions) {
		return Region{}, false
	}
	return t.regions[i], true
}

// Index：名称 → 位置映射的副本
func (c *Catalog) Index(res Resolution) map[string]int {
	t, err := c.table(res)
	if err != nil {
		return nil
	}
	return copyIndex(t.names)
}

// Codes：代码 → 位置映射的副本
func (c *Catalog) Codes(res Resolution) map[string]int {
	t, err := c.table(res)
	if err != nil {
		return nil
	}
	return copyIndex(t.codes)
}

func (c *Catalog) LookupName(res Resolution, name string) (int, bool) {
	t, err := c.table(res)
	if err != nil {
		return 0, false
	}
	i, ok := t.names[name]
	return i, ok
}

func (c *Catalog) LookupCode(res Resolution, code string) (int, bool) {
	t, err := c.table(res)
	if err != nil {
		return 0, false
	}
	i, ok := t.codes[code]
	return i, ok
}

// Lookup：先按规范名称，再按代码查找
func (c *Catalog) Lookup(res Resolution, key string) (int, bool) {
	if i, ok := c.LookupName(res, key); ok {
		return i, true
	}
	return c.LookupCode(res, key)
}

func copyIndex(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
