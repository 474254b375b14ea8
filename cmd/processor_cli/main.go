package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/paystream-engine/internal/config"
	"github.com/paystream-engine/internal/engine"
	"github.com/paystream-engine/internal/logger"
	"github.com/paystream-engine/internal/processor/stream"
)

// loadConfig reads the few settings the CLI honors straight from the
// environment. config.LoadConfig is not used here because it announces the
// config source on stdout, which is reserved for the report.
func loadConfig() *config.Config {
	v := viper.New()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENGINE_ALLOW_REDISPUTE", true)
	v.SetDefault("ENGINE_DEPOSIT_RETRY_ATTEMPTS", 3)
	v.AutomaticEnv()

	return &config.Config{
		Logging: config.LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Engine: config.EngineConfig{
			AllowRedispute:       v.GetBool("ENGINE_ALLOW_REDISPUTE"),
			DepositRetryAttempts: v.GetInt("ENGINE_DEPOSIT_RETRY_ATTEMPTS"),
		},
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(1)
	}

	cfg := loadConfig()
	log := logger.NewLoggerTo(cfg, os.Stderr)

	in, err := os.Open(os.Args[1])
	if err != nil {
		log.Error("Failed to open input file", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
	defer in.Close()

	eng := engine.New(engine.Config{AllowRedispute: cfg.Engine.AllowRedispute})
	runner := stream.NewRunner(eng, cfg.Engine.DepositRetryAttempts, log)

	if err := runner.Run(in, os.Stdout); err != nil {
		log.Error("Processing failed", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
}
