package migrate

import (
	"database/sql"

	"geo-catalog/internal/logger"
)

// 背景：首次导出自动创建所需表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _geo_regions (
            resolution TEXT NOT NULL,
            idx INT NOT NULL,
            name TEXT NOT NULL,
            code TEXT NOT NULL,
            iso2 TEXT NOT NULL,
            formal TEXT NOT NULL,
            alternate TEXT NOT NULL,
            source_resolution TEXT NOT NULL,
            source_row INT NOT NULL,
            geometry JSONB NOT NULL,
            PRIMARY KEY (resolution, idx)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_geo_regions_name ON _geo_regions(resolution, name)`,
		`CREATE INDEX IF NOT EXISTS idx_geo_regions_code ON _geo_regions(resolution, code)`,
		`CREATE TABLE IF NOT EXISTS _geo_aliases (
            alias TEXT PRIMARY KEY,
            name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS _geo_points (
            idx INT PRIMARY KEY,
            name TEXT NOT NULL,
            code TEXT NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            lat DOUBLE PRECISION NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS _geo_exports (
            id SERIAL PRIMARY KEY,
            merge_order TEXT NOT NULL,
            regions INT NOT NULL,
            aliases INT NOT NULL,
            exported_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
