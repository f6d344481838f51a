package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/config"
	"geo-catalog/internal/logger"
)

// 文档注释：目录自检工具
// 背景：更换边界数据或字段映射后，快速查看各比例尺行数、自适应序列来源分布，并试解析一组名称。
// 用法：catalog-inspect [-names "France,Czechia"] [-resolution 50m] [-list]
func main() {
	names := flag.String("names", "", "comma separated names or A3 codes to locate")
	resFlag := flag.String("resolution", "", "110m, 50m, 10m or adaptive (default)")
	list := flag.Bool("list", false, "print every region of the selected resolution")
	flag.Parse()

	config.LoadEnvFiles()
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	res, err := catalog.ParseResolution(*resFlag)
	if err != nil {
		l.Error("resolution_error", "err", err)
		os.Exit(2)
	}
	cat, err := catalog.Load(cfg.Sources, cfg.Fields)
	if err != nil {
		l.Error("catalog_load_error", "err", err)
		os.Exit(1)
	}
	conv := catalog.BuildNameConverter(cat, cfg.MergeOrder)

	for _, r := range cat.Resolutions() {
		fmt.Printf("%-8s %5d regions  %s\n", r, cat.Len(r), cfg.Sources[r])
	}
	origin := make(map[catalog.Resolution]int)
	for _, r := range cat.Regions(catalog.Adaptive) {
		origin[r.Resolution]++
	}
	fmt.Printf("%-8s %5d regions ", catalog.Adaptive, cat.Len(catalog.Adaptive))
	for _, r := range cat.Resolutions() {
		fmt.Printf(" %s:%d", r, origin[r])
	}
	fmt.Printf("\naliases  %5d (%s)\n", conv.Len(), conv.Order())

	if *list {
		for i, r := range cat.Regions(res) {
			fmt.Printf("%4d  %-4s %-3s %s\n", i, r.Code, r.ISO2, r.Name)
		}
	}
	if *names == "" {
		return
	}
	var in []string
	for _, n := range strings.Split(*names, ",") {
		if n = strings.TrimSpace(n); n != "" {
			in = append(in, n)
		}
	}
	ps, err := catalog.NewLocator(cat, conv).Locate(in, res, catalog.PointsRepresentative)
	if err != nil {
		l.Error("locate_error", "err", err)
		os.Exit(1)
	}
	for _, p := range ps {
		fmt.Printf("%-24s -> %4d %-4s %-32s (%.4f, %.4f)\n", p.Input, p.Index, p.Code, p.Name, p.Point.Lon(), p.Point.Lat())
	}
}
