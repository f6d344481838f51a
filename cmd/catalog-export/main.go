package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/config"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/migrate"
	"geo-catalog/internal/store"
	"geo-catalog/internal/utils"
)

// 文档注释：把目录导出到 PostgreSQL
// 背景：下游报表与 SQL 侧绘图无需加载边界文件，直接读取 _geo_regions/_geo_aliases/_geo_points。
// 约束：整体替换旧数据；目录构建失败或数据库不可用时退出码为 1。
func main() {
	config.LoadEnvFiles()
	l := logger.Setup()
	if err := run(); err != nil {
		l.Error("catalog_export_error", "err", err)
		os.Exit(1)
	}
}

// run：连接与上下文在返回前释放，退出码由 main 决定
func run() error {
	l := logger.L()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cat, err := catalog.Load(cfg.Sources, cfg.Fields)
	if err != nil {
		return err
	}
	conv := catalog.BuildNameConverter(cat, cfg.MergeOrder)

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := migrate.EnsureSchema(db); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	st := store.AttachDB(db)
	if _, err := st.ExportCatalog(ctx, cat, conv, cat.RepresentativePoints()); err != nil {
		return err
	}
	counts, err := st.CountRegions(ctx)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	for res, n := range counts {
		l.Info("catalog_export_verify", "resolution", res, "rows", n)
	}
	return nil
}
