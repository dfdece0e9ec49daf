// Package cmd implements the depscope command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/internal/config"
	deperrors "github.com/depscope/depscope/internal/errors"
	"github.com/depscope/depscope/internal/graph"
	"github.com/depscope/depscope/internal/logging"
	"github.com/depscope/depscope/internal/tree"
	"github.com/depscope/depscope/internal/tui"
)

// Version information set by main at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "depscope",
		Short: "Interactive dependency tree viewer for Cargo projects",
		Long: `Depscope loads the dependency graph of a Cargo project and presents it
as an interactive tree in the terminal. Navigate with vim style keys,
fold subtrees, and search across the whole graph.

The graph is read from 'cargo metadata' when available, falling back to
Cargo.lock when the cargo binary cannot be run.`,
		SilenceUsage: true,
		RunE:         runRoot,
	}

	c.Flags().String("config", "", "path to config file (default .depscope.yaml)")
	c.Flags().String("manifest-path", "", "path to Cargo.toml")
	c.Flags().String("lockfile", "", "path to Cargo.lock (lockfile source only)")
	c.Flags().StringP("package", "p", "", "workspace package to use as the tree root")
	c.Flags().String("source", "", "graph source: auto, metadata, or lockfile")
	c.Flags().IntP("depth", "d", 0, "expand the tree to this depth on startup")
	c.Flags().Bool("expand-all", false, "expand the whole tree on startup")
	c.Flags().Bool("ascii", false, "draw the tree with ASCII glyphs")
	c.Flags().Bool("no-dev", false, "hide dev-dependencies")
	c.Flags().Bool("no-build", false, "hide build-dependencies")
	c.Flags().String("cargo-path", "", "path to the cargo binary")
	c.Flags().BoolP("verbose", "v", false, "enable debug logging")

	return c
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return reportError(cmd, err)
	}

	if err := mergeFlags(cmd, cfg); err != nil {
		return reportError(cmd, err)
	}

	logger, err := initLogging(cmd, cfg)
	if err == nil {
		defer logger.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, source, err := loadGraph(ctx, cfg)
	if err != nil {
		return reportError(cmd, err)
	}

	tr, err := tree.BuildWithOptions(g, tree.Options{
		IncludeDev:   cfg.UI.ShowDev,
		IncludeBuild: cfg.UI.ShowBuild,
	})
	if err != nil {
		return reportError(cmd, err)
	}

	return tui.Run(tr, tui.Options{
		ASCII:        cfg.UI.Charset == config.CharsetASCII,
		InitialDepth: cfg.UI.InitialDepth,
		ExpandAll:    cfg.UI.ExpandAll,
		Source:       source,
	})
}

// mergeFlags overlays explicitly set command line flags on top of the
// loaded configuration, then re-validates the result.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("manifest-path") {
		cfg.Loader.ManifestPath, _ = flags.GetString("manifest-path")
	}
	if flags.Changed("lockfile") {
		cfg.Loader.Lockfile, _ = flags.GetString("lockfile")
	}
	if flags.Changed("package") {
		cfg.Loader.Package, _ = flags.GetString("package")
	}
	if flags.Changed("source") {
		s, _ := flags.GetString("source")
		cfg.Loader.Source = config.Source(s)
	}
	if flags.Changed("cargo-path") {
		cfg.Loader.CargoPath, _ = flags.GetString("cargo-path")
	}
	if flags.Changed("depth") {
		cfg.UI.InitialDepth, _ = flags.GetInt("depth")
	}
	if flags.Changed("expand-all") {
		cfg.UI.ExpandAll, _ = flags.GetBool("expand-all")
	}
	if flags.Changed("ascii") {
		if ascii, _ := flags.GetBool("ascii"); ascii {
			cfg.UI.Charset = config.CharsetASCII
		}
	}
	if flags.Changed("no-dev") {
		if noDev, _ := flags.GetBool("no-dev"); noDev {
			cfg.UI.ShowDev = false
		}
	}
	if flags.Changed("no-build") {
		if noBuild, _ := flags.GetBool("no-build"); noBuild {
			cfg.UI.ShowBuild = false
		}
	}
	if flags.Changed("verbose") {
		if verbose, _ := flags.GetBool("verbose"); verbose {
			cfg.Logging.Level = "debug"
		}
	}

	return cfg.Validate()
}

func initLogging(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	logCfg.LogDir = cfg.Logging.Dir
	logCfg.MaxLogFiles = cfg.Logging.MaxFiles

	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
		logging.SetGlobal(logging.NewNoop())
		return nil, err
	}
	logging.SetGlobal(logger)
	return logger, nil
}

// loadGraph resolves the dependency graph according to the configured
// source, returning the graph and a label describing where it came from.
func loadGraph(ctx context.Context, cfg *config.Config) (*graph.Graph, string, error) {
	switch cfg.Loader.Source {
	case config.SourceMetadata:
		g, err := metadataGraph(ctx, cfg)
		return g, "metadata", err

	case config.SourceLockfile:
		g, err := lockfileGraph(cfg)
		return g, "lockfile", err

	default:
		g, err := metadataGraph(ctx, cfg)
		if err == nil {
			return g, "metadata", nil
		}
		lockPath := lockfilePath(cfg)
		if _, statErr := os.Stat(lockPath); statErr != nil {
			return nil, "", err
		}
		logging.Warn("cargo metadata failed, falling back to lockfile",
			"error", err, "lockfile", lockPath)
		g, lockErr := lockfileGraph(cfg)
		if lockErr != nil {
			return nil, "", lockErr
		}
		return g, "lockfile", nil
	}
}

func metadataGraph(ctx context.Context, cfg *config.Config) (*graph.Graph, error) {
	loader := &graph.MetadataLoader{
		CargoPath:    cfg.Loader.CargoPath,
		ManifestPath: cfg.Loader.ManifestPath,
		Package:      cfg.Loader.Package,
	}
	return loader.Load(ctx)
}

func lockfileGraph(cfg *config.Config) (*graph.Graph, error) {
	loader := &graph.LockfileLoader{
		LockfilePath: lockfilePath(cfg),
		ManifestPath: cfg.Loader.ManifestPath,
		Package:      cfg.Loader.Package,
	}
	return loader.Load()
}

func lockfilePath(cfg *config.Config) string {
	if cfg.Loader.Lockfile != "" {
		return cfg.Loader.Lockfile
	}
	if cfg.Loader.ManifestPath != "" {
		return filepath.Join(filepath.Dir(cfg.Loader.ManifestPath), "Cargo.lock")
	}
	return "Cargo.lock"
}

// reportError prints structured errors with their suggestion before
// returning them, so cobra does not repeat the bare message.
func reportError(cmd *cobra.Command, err error) error {
	var derr *deperrors.Error
	if errors.As(err, &derr) {
		fmt.Fprint(cmd.ErrOrStderr(), derr.Format())
		cmd.SilenceErrors = true
	}
	return err
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("depscope %s (commit: %s, built: %s)\n", Version, Commit, Date))
	return rootCmd.Execute()
}

// Root returns the root command for testing.
func Root() *cobra.Command {
	return rootCmd
}
