package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/ethlink/pkg/board"
	fx "github.com/robotalks/ethlink/pkg/framework"
	"github.com/robotalks/ethlink/pkg/l0/env"
	"github.com/robotalks/ethlink/pkg/l0/link"
	"github.com/robotalks/ethlink/pkg/transfer"
)

var (
	mode        = string(board.ModeEcho)
	file        string
	chunkSize   = transfer.DefaultChunkSize
	sessions    int
	configFile  string
	metricsAddr string
)

func init() {
	if env.Default().Backend == env.PhysicalLink {
		env.Default().Backend = env.LocalSubstitute
	}
	env.SetupFlags(flag.CommandLine)
	flag.StringVar(&mode, "mode", mode, "Board mode: echo, recv or send.")
	flag.StringVar(&file, "file", file, "File written in recv mode, served in send mode.")
	flag.IntVar(&chunkSize, "chunk-size", chunkSize, "Payload bytes per data frame, must match the host.")
	flag.IntVar(&sessions, "sessions", sessions, "Exit after this many host sessions, 0 for never.")
	flag.StringVar(&configFile, "config", configFile, "Link config file (.toml or .yaml).")
	flag.StringVar(&metricsAddr, "metrics-addr", metricsAddr, "Serve prometheus metrics on this address.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			glog.Exit(err)
		}
	}
	if chunkSize <= 0 || chunkSize > link.MaxFrameSize {
		glog.Exitf("-chunk-size must be within 1..%d", link.MaxFrameSize)
	}
	m, err := board.ParseMode(mode)
	if err != nil {
		glog.Exit(err)
	}
	host, err := conf.Source()
	if err != nil {
		glog.Exitf("host address: %v", err)
	}

	sim := &board.Simulator{
		Open:          conf.OpenBoardChannel,
		Host:          host,
		Mode:          m,
		RetryInterval: conf.RetryInterval,
		MaxRetries:    conf.MaxRetries,
		Options:       []transfer.Option{transfer.WithChunkSize(chunkSize)},
		Sessions:      sessions,
	}
	switch m {
	case board.ModeSend:
		if sim.Data, err = os.ReadFile(file); err != nil {
			glog.Exit(err)
		}
	case board.ModeRecv:
		sim.OnReceive = func(data []byte, rep *transfer.Report) error {
			glog.Infof("received %d bytes with %d errors", len(data), rep.ErrorBytes)
			if file == "" {
				return nil
			}
			return os.WriteFile(file, data, 0644)
		}
	}

	runner := fx.NewRunner().HandleSignals()
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		sim.Metrics = link.NewMetrics(reg)
		runner.Go(fx.MetricsServer(metricsAddr, reg))
	}
	if err := runner.Go(sim).Wait(); err != nil {
		glog.Exit(err)
	}
}
