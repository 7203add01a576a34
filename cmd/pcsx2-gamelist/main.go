package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/twinfer/pcsx2-gamelist/internal/filter"
	"github.com/twinfer/pcsx2-gamelist/pkg/catalog"
	"github.com/twinfer/pcsx2-gamelist/pkg/config"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

// flags holds the global command line values.
type flags struct {
	configPath string
	cachePath  string
	encoding   string
	filter     string
	storeDir   string
	format     string
	skipEmpty  bool
	debug      bool
}

// app is the state shared by the subcommands once flags are resolved.
type app struct {
	flags  flags
	cfg    *config.Config
	logger *slog.Logger
	filter *filter.Filter
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pcsx2-gamelist",
		Short: "Inspect the PCSX2 game list cache",
		Long: `Reads the gamelist.cache file PCSX2 keeps for its game library and
prints the records it holds.

Examples:
  pcsx2-gamelist records
  pcsx2-gamelist games --filter 'region == 1' -o yaml
  pcsx2-gamelist import --store ./catalog
  pcsx2-gamelist header --cache ./gamelist.cache`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&a.flags.cachePath, "cache", "", "path to gamelist.cache (default: PCSX2 cache directory)")
	pf.StringVar(&a.flags.encoding, "encoding", gamelist.DefaultEncoding, "text encoding of the record strings")
	pf.StringVar(&a.flags.filter, "filter", "", "CEL expression selecting records")
	pf.StringVar(&a.flags.storeDir, "store", "", "catalog store directory")
	pf.StringVarP(&a.flags.format, "format", "o", formatJSON, "output format (json or yaml)")
	pf.BoolVar(&a.flags.skipEmpty, "skip-empty-serial", false, "drop records without a serial")
	pf.BoolVar(&a.flags.debug, "debug", false, "log every decoded record")

	rootCmd.AddCommand(newRecordsCmd(a))
	rootCmd.AddCommand(newGamesCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newHeaderCmd(a))

	return rootCmd
}

// setup merges the config file with the flags that were set explicitly.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if a.flags.configPath != "" {
		loaded, err := config.LoadConfig(a.flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("cache") {
		cfg.CachePath = a.flags.cachePath
	}
	if changed("encoding") {
		cfg.Encoding = a.flags.encoding
	}
	if changed("filter") {
		cfg.Filter = a.flags.filter
	}
	if changed("store") {
		cfg.StoreDir = a.flags.storeDir
	}
	if changed("skip-empty-serial") {
		cfg.SkipEmptySerial = a.flags.skipEmpty
	}
	if changed("debug") {
		cfg.Logging.Debug = a.flags.debug
		if a.flags.debug {
			cfg.Logging.Level = "debug"
		}
	}

	if a.flags.format != formatJSON && a.flags.format != formatYAML {
		return fmt.Errorf("unsupported output format %q", a.flags.format)
	}
	if err := gamelist.CheckEncoding(cfg.Encoding); err != nil {
		return err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cfg.Filter != "" {
		f, err := filter.Compile(cfg.Filter)
		if err != nil {
			return err
		}
		a.filter = f
	}

	a.cfg = cfg
	return nil
}

func (a *app) cachePath() (string, error) {
	if a.cfg.CachePath != "" {
		return a.cfg.CachePath, nil
	}
	return catalog.DefaultCachePath()
}

func (a *app) decoderOptions() []gamelist.Option {
	return []gamelist.Option{
		gamelist.WithLogger(a.logger),
		gamelist.WithEncoding(a.cfg.Encoding),
		gamelist.WithDebugMode(a.cfg.Logging.Debug),
	}
}

// readCache returns the raw cache bytes and the path they came from.
func (a *app) readCache() ([]byte, string, error) {
	path, err := a.cachePath()
	if err != nil {
		return nil, "", err
	}
	data, err := catalog.ReadCache(path)
	if err != nil {
		return nil, "", err
	}
	return data, path, nil
}
