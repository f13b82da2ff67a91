package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MovieCatalog/internal/catalog"
	"MovieCatalog/internal/config"
)

const service = "catalog"

var version = "dev"

type cli struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Movie catalog service",
		Long: `catalog - movie catalog service

Serves a searchable movie catalog as HTML pages and a JSON API, and offers
the same lookups from the command line.

Examples:
  catalog serve
  catalog search --name "the" --genre drama
  catalog show 3
  catalog genres`,
		SilenceUsage: true,
		Version:      version,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a TOML config file")
	root.SetVersionTemplate("catalog {{.Version}}\n")

	root.AddCommand(
		c.serveCmd(),
		c.searchCmd(),
		c.showCmd(),
		c.genresCmd(),
	)
	return root
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalog opens the configured source and loads it once. A source that
// cannot be opened degrades the same way a failed read does.
func loadCatalog(ctx context.Context, cfg *config.Config, log *zap.Logger) catalog.LoadResult {
	ctx, cancel := context.WithTimeout(ctx, cfg.Catalog.LoadTimeout)
	defer cancel()

	src, closeSrc, err := openSource(ctx, cfg.Catalog)
	if err != nil {
		log.Error("catalog source unavailable, serving empty catalog",
			zap.String("source", cfg.Catalog.Source), zap.Error(err))
		return catalog.LoadResult{
			Catalog: catalog.Empty(),
			Source:  cfg.Catalog.Source,
			Err:     err,
		}
	}
	defer closeSrc()

	return catalog.Load(ctx, src, log)
}

func openSource(ctx context.Context, cc config.CatalogConfig) (catalog.Source, func(), error) {
	var driver string
	switch cc.Source {
	case config.SourceFile:
		return catalog.FileSource{Path: cc.Path}, func() {}, nil
	case config.SourcePostgres:
		driver = catalog.DriverPostgres
	case config.SourceSQLite:
		driver = catalog.DriverSQLite
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cc.Source)
	}

	src, err := catalog.OpenSQLSource(ctx, driver, cc.DSN)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { _ = src.Close() }, nil
}

// readCatalog is the strict variant used by the one-shot commands: a
// degraded load is reported instead of printing empty results.
func (c *cli) readCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	res := loadCatalog(cmd.Context(), cfg, zap.NewNop())
	if res.Degraded() {
		return nil, fmt.Errorf("catalog unavailable: %w", res.Err)
	}
	return res.Catalog, nil
}
