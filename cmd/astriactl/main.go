package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"astria/internal/astria"
	"astria/internal/generate"
	"astria/internal/infra"
)

var rootCmd = &cobra.Command{
	Use:           "astriactl",
	Short:         "Drive Astria fine-tunes and image generation from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if classified := astria.Classify(err); classified != nil {
			os.Stderr.WriteString(classified.Error() + "\n")
		}
		os.Exit(1)
	}
}

// app bundles the dependencies every command needs: configuration, logger,
// API client and the generation engine.
type app struct {
	cfg    *infra.Config
	logger infra.Logger
	client *astria.Client
	engine *generate.Engine
}

func newApp() (*app, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client, err := astria.NewClient(astria.Options{
		APIKey:         cfg.AstriaAPIKey,
		BaseURL:        cfg.AstriaBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         &logger,
	})
	if err != nil {
		return nil, err
	}

	engine := generate.NewEngine(client, generate.Options{
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		Logger:          &logger,
	})

	return &app{cfg: cfg, logger: logger, client: client, engine: engine}, nil
}
