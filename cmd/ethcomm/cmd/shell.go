package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/robotalks/ethlink/pkg/cli/sh"
	fx "github.com/robotalks/ethlink/pkg/framework"
	"github.com/robotalks/ethlink/pkg/l0/link"
)

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell [COMMAND ARGS...[; COMMAND ARGS...]]",
	Short: "Interactive console on the link",
	Long: `Interactive console on the link. Commands are open [loopback], close,
ping, wait, send TEXT, recv and status. Commands given as arguments run
in order, separated by ";", without entering the console.

Examples:
  ethcomm shell
  ethcomm shell "open loopback; ping; send hello; status"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var metrics *link.Metrics
		if metricsAddr != "" {
			reg := prometheus.NewRegistry()
			metrics = link.NewMetrics(reg)
			runner := fx.NewRunner().Go(fx.MetricsServer(metricsAddr, reg))
			defer func() {
				runner.Stop()
				runner.Wait()
			}()
		}
		sh.New(conf, metrics).Run(args...)
		return nil
	},
}
