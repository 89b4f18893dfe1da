package main

import (
	"fmt"
	"os"

	"tradedesk/internal/cli"
	"tradedesk/internal/config"
	"tradedesk/internal/logging"
)

func main() {
	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	if cfg.Logging.Path != "" {
		logCfg.FilePath = cfg.Logging.Path
	}
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
