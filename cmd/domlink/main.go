package main

import (
	"os"

	"github.com/QuadTriangle/domlink/internal/logging"
)

const (
	appName    = "domlink"
	appVersion = "0.1.0"
)

func main() {
	log := logging.ConfigureRuntime(appName)
	if err := newRootCmd(log, os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
