// 包 store：把只读目录导出到 PostgreSQL，供不加载边界文件的下游（报表、SQL 侧绘图）查询
package store

import (
	"context"
	"database/sql"
	"fmt"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/logger"

	"github.com/lib/pq"
	"github.com/paulmach/orb/geojson"
)

// Store：数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sql.DB { return s.db }

type regionRow struct {
	resolution string
	idx        int
	region     catalog.Region
	geometry   []byte
}

// regionRows：全部比例尺加自适应序列的行
func regionRows(c *catalog.Catalog) ([]regionRow, error) {
	var out []regionRow
	for _, res := range append(c.Resolutions(), catalog.Adaptive) {
		for i, r := range c.Regions(res) {
			g, err := geojson.NewGeometry(r.Geometry).MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", res, i, err)
			}
			out = append(out, regionRow{resolution: string(res), idx: i, region: r, geometry: g})
		}
	}
	return out, nil
}

// ExportResult：导出计数
type ExportResult struct {
	Regions int
	Aliases int
	Points  int
}

// 文档注释：整体替换导出表内容
// 背景：目录是一次性构建的只读快照，导出以单事务“清空 + COPY”完成，读者不会看到半成品。
// 约束：调用前需执行 migrate.EnsureSchema；任一步失败整体回滚。
func (s *Store) ExportCatalog(ctx context.Context, c *catalog.Catalog, conv *catalog.NameConverter, pts *catalog.PointTable) (*ExportResult, error) {
	rows, err := regionRows(c)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range []string{"_geo_regions", "_geo_aliases", "_geo_points"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return nil, fmt.Errorf("clear %s: %w", t, err)
		}
	}

	res := &ExportResult{}
	err = copyRows(ctx, tx, pq.CopyIn("_geo_regions", "resolution", "idx", "name", "code", "iso2", "formal", "alternate", "source_resolution", "source_row", "geometry"),
		func(exec func(args ...any) error) error {
			for _, r := range rows {
				g := r.region
				if err := exec(r.resolution, r.idx, g.Name, g.Code, g.ISO2, g.Formal, g.Alternate, string(g.Resolution), g.Row, string(r.geometry)); err != nil {
					return err
				}
				res.Regions++
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("copy regions: %w", err)
	}

	err = copyRows(ctx, tx, pq.CopyIn("_geo_aliases", "alias", "name"), func(exec func(args ...any) error) error {
		var ferr error
		conv.Each(func(alias, name string) {
			if ferr != nil {
				return
			}
			if ferr = exec(alias, name); ferr == nil {
				res.Aliases++
			}
		})
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("copy aliases: %w", err)
	}

	err = copyRows(ctx, tx, pq.CopyIn("_geo_points", "idx", "name", "code", "lon", "lat"), func(exec func(args ...any) error) error {
		for i := 0; i < pts.Len(); i++ {
			p, _ := pts.At(i)
			if err := exec(i, p.Name, p.Code, p.Point.Lon(), p.Point.Lat()); err != nil {
				return err
			}
			res.Points++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copy points: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO _geo_exports(merge_order, regions, aliases) VALUES($1, $2, $3)`,
		conv.Order().String(), res.Regions, res.Aliases); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.L().Info("catalog_export_done", "regions", res.Regions, "aliases", res.Aliases, "points", res.Points)
	return res, nil
}

// copyRows：COPY FROM STDIN 批量写入；fill 逐行调用 exec，结束后以空 Exec 刷新缓冲
func copyRows(ctx context.Context, tx *sql.Tx, query string, fill func(exec func(args ...any) error) error) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	if err := fill(func(args ...any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	}); err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx)
	return err
}

// CountRegions：按比例尺统计已导出的行数
func (s *Store) CountRegions(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT resolution, COUNT(1) FROM _geo_regions GROUP BY resolution")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var res string
		var n int
		if err := rows.Scan(&res, &n); err != nil {
			return nil, err
		}
		out[res] = n
	}
	return out, rows.Err()
}
