package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bitebot/internal/agent"
	"bitebot/internal/agent/ports"
	"bitebot/internal/config"
	"bitebot/internal/llm"
	"bitebot/internal/observability"
	"bitebot/internal/server"
	"bitebot/internal/session"
	"bitebot/internal/session/filestore"
	"bitebot/internal/session/memstore"
	"bitebot/internal/toolregistry"
	"bitebot/internal/tools/builtin"
	"bitebot/internal/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "bitebot-server",
		Short: "BiteBot restaurant assistant server",
		Long:  "Serves the BiteBot chat UI and API: restaurant search, availability checks, and reservations over a conversational interface.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().Int("port", 0, "HTTP listen port (overrides PORT)")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger := utils.NewComponentLogger("Main")
	logger.Info("Starting BiteBot server...")

	cfg := config.Load()
	if port := viper.GetInt("port"); port > 0 {
		cfg.Port = port
	}
	if viper.GetBool("debug") {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Debug {
		utils.GetLogger().SetLevel(utils.DEBUG)
	}

	logger.Info("Model: %s, port: %d, debug: %v", cfg.Model, cfg.Port, cfg.Debug)

	metrics, err := observability.NewMetricsCollector(observability.MetricsConfig{Enabled: cfg.MetricsEnabled})
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}

	// A missing API key keeps the server up with chat refused; /health
	// reports the degraded state.
	var runner server.TurnRunner
	ready := false
	if cfg.Ready() {
		client, err := llm.NewOpenAIClient(cfg.Model, llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			logger.Error("Model client init failed, chat disabled: %v", err)
		} else {
			registry, err := toolregistry.New(builtin.All(builtin.Config{BaseURL: cfg.RestaurantAPIURL}))
			if err != nil {
				return fmt.Errorf("tool registry: %w", err)
			}
			runner = agent.NewRunner(client, registry).WithMetrics(metrics)
			ready = true
		}
	} else {
		logger.Error("OPENAI_API_KEY missing, chat disabled")
	}

	store, err := buildSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	cookies := session.NewCookieCodec(cfg.SessionSecret, cfg.SecureCookies)

	srv := server.New(server.Config{
		Port:  cfg.Port,
		Debug: cfg.Debug,
		Ready: ready,
	}, runner, store, cookies, metrics)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	if err := metrics.Shutdown(ctx); err != nil {
		logger.Error("Metrics shutdown error: %v", err)
	}
	logger.Info("Server stopped")
	return nil
}

func buildSessionStore(cfg *config.Config) (ports.SessionStore, error) {
	if cfg.SessionDir != "" {
		return filestore.New(cfg.SessionDir), nil
	}
	return memstore.New(0)
}
