package cmd

import (
	"os"
	"time"

	"github.com/jrsteele09/go-catalog-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Catalog admin console",
	Long: `Administrative console for the beer, accessories and snacks catalog.
Serves the admin pages locally and keeps the signed-in session fresh.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "console.yaml", "Path to the yaml config file")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile, config.NewDefaultEnvBinder())
	if err != nil {
		return nil, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg config.EnvConfig) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
