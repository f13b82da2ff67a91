package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MovieCatalog/internal/catalog"
	"MovieCatalog/internal/config"
	"MovieCatalog/pkg/kit"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			log := kit.NewLogger(service, cfg.Server.LogLevel)
			defer func() { _ = log.Sync() }()

			h, err := newHandler(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("build handler", zap.Error(err))
				return err
			}

			if err := kit.RunHTTPServer(cmd.Context(), cfg.Addr(), h, log); err != nil {
				log.Error("http server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

// newHandler loads the catalog and assembles the full HTTP stack for it.
func newHandler(ctx context.Context, cfg *config.Config, log *zap.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := catalog.NewMetrics(reg)

	res := loadCatalog(ctx, cfg, log)
	metrics.ObserveLoad(res)

	views, err := catalog.NewViews()
	if err != nil {
		return nil, err
	}

	s := &catalog.Server{
		Catalog: res.Catalog,
		LoadErr: res.Err,
		Views:   views,
		Log:     log,
		Metrics: metrics,
	}
	if cfg.RateLimit.RPS > 0 {
		limiter := kit.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
			return nil, err
		}
		s.SearchLimiter = limiter
	}

	return catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		TrustedOrigins: cfg.CORS.TrustedOrigins,
	}), nil
}
