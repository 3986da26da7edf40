// Package cli implements the ycnodes command line: node and operation
// listing, one-shot operation runs and resource-locator searches.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/flowmation/yandexcloud-nodes/internal/config"
	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/internal/tracing"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion records build metadata, called from main with ldflags
// values.
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ycnodes",
		Short: "Yandex Cloud integration nodes",
		Long: `ycnodes invokes Yandex Cloud managed services (Message Queue,
Postbox, Lockbox, YandexGPT) through the same node adapters a workflow
host embeds. Operations take JSON parameters and emit JSON items.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: ~/.config/ycnodes/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging and stderr trace export")

	cmd.AddCommand(
		newNodesCommand(),
		newOpsCommand(),
		newRunCommand(opts),
		newSearchCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// HandleExitError prints the error and exits non-zero.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, renderError(err.Error()))
	os.Exit(1)
}

// setup loads configuration, builds the logger and, in debug mode,
// installs the trace exporter.
func (o *rootOptions) setup() (*config.Config, *log.Config, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logCfg := log.FromEnv()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}

	cleanup := func() {}
	if o.debug {
		logCfg.Level = "debug"
		shutdown, err := tracing.Setup()
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}
	}

	if cfg.Metrics.Enabled {
		if err := node.EnableMetrics(prometheus.DefaultRegisterer); err != nil {
			cleanup()
			return nil, nil, nil, err
		}
	}
	return cfg, logCfg, cleanup, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
