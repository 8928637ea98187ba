package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akhenakh/tardis"
	"github.com/akhenakh/tardis/internal/config"
	"github.com/akhenakh/tardis/internal/logger"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// Global flags
	configPath    string
	catalogPath   string
	catalogFormat string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tardis",
	Short: "Propagate satellite element sets with SGP4/SDP4",
	Long: `tardis reads two-line element sets or CCSDS OMM JSON and propagates
them with the SGP4/SDP4 model.

Commands:
  propagate - print state vectors or geodetic positions
  validate  - report records that cannot be used
  track     - render a ground track as SVG
  watch     - propagate periodically and export Prometheus metrics

Example:
  tardis propagate --catalog active.txt --time 2025-05-18T12:00:00Z
  tardis track --catalog active.txt --sat 25544 --duration 3h > iss.svg
  TARDIS_LOG_LEVEL=debug tardis watch --catalog active.txt`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search for tardis.yaml)")
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "element set file, - for stdin (or set TARDIS_CATALOG_PATH)")
	rootCmd.PersistentFlags().StringVar(&catalogFormat, "format", "", "catalog format: tle or omm")

	// Add subcommands
	rootCmd.AddCommand(propagateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(watchCmd)
}

// Execute runs the CLI. Interrupt and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// cobra only inherits the root context into subcommands without one,
	// so a context left from an earlier run would be reused
	setContext(rootCmd, ctx)
	return rootCmd.ExecuteContext(ctx)
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if catalogFormat != "" {
		cfg.Catalog.Format = strings.ToLower(catalogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log.Debug("configuration loaded",
		zap.String("gravity", cfg.Gravity),
		zap.String("opsmode", cfg.OpsMode),
		zap.String("catalog", cfg.Catalog.Path),
	)
	return nil
}

// loadCatalog reads the configured catalog. Extra options are applied after
// the ones derived from the configuration.
func loadCatalog(cmd *cobra.Command, extra ...tardis.CatalogOption) (*tardis.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return nil, fmt.Errorf("no catalog given: set --catalog or TARDIS_CATALOG_PATH")
	}
	sessionOpts, err := cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	opts := append([]tardis.CatalogOption{
		tardis.WithLogger(log),
		tardis.WithWorkers(cfg.Workers),
		tardis.WithSessionOptions(sessionOpts...),
	}, extra...)

	var r io.Reader
	if cfg.Catalog.Path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	start := time.Now()
	var c *tardis.Catalog
	switch cfg.Catalog.Format {
	case "omm":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
		c, err = tardis.CatalogFromOMM(data, opts...)
		if err != nil {
			return nil, err
		}
	default:
		c, err = tardis.ReadCatalog(r, opts...)
		if err != nil {
			return nil, err
		}
	}
	log.Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("entries", c.Len()),
		zap.Int("failures", len(c.Failures)),
		zap.Duration("took", time.Since(start)),
	)
	return c, nil
}

// parseTime accepts RFC 3339 or "now".
func parseTime(s string) (time.Time, error) {
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or now", s)
	}
	return t.UTC(), nil
}

func lookup(c *tardis.Catalog, number int) (*tardis.Entry, error) {
	e, ok := c.Lookup(number)
	if !ok {
		return nil, fmt.Errorf("satellite %05d not in catalog", number)
	}
	return e, nil
}
