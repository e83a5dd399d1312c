package main

import (
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/ethlink/cmd/ethcomm/cmd"
)

//go-build: CGO_ENABLED=0

func main() {
	defer glog.Flush()
	if err := cmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
