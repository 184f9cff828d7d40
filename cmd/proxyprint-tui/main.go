package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Path to config file")
	logFlag := flag.String("log", "", "Write logs to this file (the screen is taken by the UI)")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Logs would tear the alternate screen, so they only go to a file.
	log := zap.NewNop()
	if *logFlag != "" {
		logCfg := settings.ToLoggerConfig()
		logCfg.Output = *logFlag
		if log, err = logger.New(logCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer func() { _ = log.Sync() }()

	if err := tui.Run(settings, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
