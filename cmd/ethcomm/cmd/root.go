// Package cmd implements the ethcomm CLI commands.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	fx "github.com/robotalks/ethlink/pkg/framework"
	"github.com/robotalks/ethlink/pkg/l0/env"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

var (
	// Global flags
	configFile  string
	metricsAddr string

	conf = env.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ethcomm",
	Short: "Reliable frame exchange with a board over raw ethernet",
	Long: `ethcomm talks the stop-and-wait link protocol with an embedded board.

The link runs over a raw ethernet interface, a local unix socket
(ETHLINK_PC set, or --backend local) or an MQTT bridge to a simulated
board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its flags from flag.CommandLine.
		flag.CommandLine.Parse(nil)
		if configFile == "" {
			return nil
		}
		return loadConfig(cmd.Flags(), conf, configFile)
	},
}

func init() {
	goFlags := flag.NewFlagSet("link", flag.ContinueOnError)
	conf.BindFlags(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Link config file (.toml or .yaml).")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address.")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig overlays the config file, keeping flags explicitly set on
// the command line.
func loadConfig(fs *pflag.FlagSet, c *env.Config, path string) error {
	explicit := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := c.LoadFile(path); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	return nil
}

// session runs fn on a freshly opened link, alongside the metrics
// endpoint when requested. Ctrl-C cancels fn by closing the link.
func session(name string, fn func(ctx context.Context, l *link.Link) error) error {
	runner := fx.NewRunner().HandleSignals()
	var metrics *link.Metrics
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = link.NewMetrics(reg)
		runner.Go(fx.MetricsServer(metricsAddr, reg))
	}
	l, err := conf.NewLink(runner.Context, metrics)
	if err != nil {
		runner.Stop()
		runner.Wait()
		return err
	}
	runner.Go(fx.NamedRun(name, fx.RunnableFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, l, func() error {
			return fn(ctx, l)
		})
	})))
	return runner.Wait()
}
