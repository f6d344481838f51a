// 程序入口：仅负责读取配置、构建目录并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"geo-catalog/internal/api"
	"geo-catalog/internal/catalog"
	"geo-catalog/internal/config"
	"geo-catalog/internal/geoip"
	"geo-catalog/internal/logger"
	"geo-catalog/internal/metrics"
	"geo-catalog/internal/middleware"
	"geo-catalog/internal/utils"
)

func main() {
	config.LoadEnvFiles()
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_api_base", "base", cfg.APIBase)

	// 背景：目录一次性构建、只读共享；任一比例尺加载失败即退出，不以部分数据提供服务
	l.Info("catalog_load_begin", "sources", len(cfg.Sources), "merge_order", cfg.MergeOrder.String())
	cat, err := catalog.Load(cfg.Sources, cfg.Fields)
	if err != nil {
		l.Error("catalog_load_error", "err", err)
		os.Exit(1)
	}
	conv := catalog.BuildNameConverter(cat, cfg.MergeOrder)
	loc := catalog.NewLocator(cat, conv)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	deps := api.Deps{
		Locator:         loc,
		Redis:           rc,
		ReverseCache:    api.NewReverseCache(cfg.ReverseCacheSize, cfg.ReverseCacheTTL),
		ReverseRadiusKm: cfg.ReverseRadiusKm,
		LocateCacheTTL:  cfg.LocateCacheTTL,
	}
	// 背景：GeoIP 为可选能力；数据库缺失或类型不符时仅禁用 /geoip
	if cfg.GeoIPPath != "" {
		if gr, err := geoip.Open(cfg.GeoIPPath, loc); err == nil {
			defer gr.Close()
			deps.GeoIP = gr
		} else {
			l.Error("geoip_open_error", "path", cfg.GeoIPPath, "err", err)
		}
	} else {
		l.Info("geoip_disabled")
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(deps)
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.HandleFunc(cfg.APIBase+"/status", func(w http.ResponseWriter, r *http.Request) {
		counts := map[string]int{string(catalog.Adaptive): cat.Len(catalog.Adaptive)}
		for _, res := range cat.Resolutions() {
			counts[string(res)] = cat.Len(res)
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"built_at":    cat.BuiltAt(),
			"regions":     counts,
			"aliases":     conv.Len(),
			"merge_order": conv.Order().String(),
			"geoip":       deps.GeoIP != nil,
			"redis":       rc != nil,
		})
	})

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: cfg.Addr, Handler: handler}
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "geo-catalog.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		// 可选：启动HTTP重定向到HTTPS（不改变HTTPS运行端口）
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			go redirectToHTTPS(cfg.Addr)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
		return
	}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}

func redirectToHTTPS(addr string) {
	l := logger.L()
	redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
	if redirAddr == "" {
		redirAddr = ":80"
	}
	httpRedir := http.NewServeMux()
	httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// 替换目标端口为HTTPS服务端口
		httpsPort := strings.TrimPrefix(addr, ":")
		baseHost := r.Host
		if i := strings.LastIndex(baseHost, ":"); i != -1 {
			baseHost = baseHost[:i]
		}
		targetHost := baseHost
		if httpsPort != "" {
			targetHost = baseHost + ":" + httpsPort
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
	if err := http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir)); err != nil {
		l.Error("http_redirect_error", "err", err)
	}
}
