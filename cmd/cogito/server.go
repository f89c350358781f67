package cogito

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/cogito"
	"github.com/soundprediction/cogito/pkg/alert"
	"github.com/soundprediction/cogito/pkg/config"
	"github.com/soundprediction/cogito/pkg/driver"
	"github.com/soundprediction/cogito/pkg/history"
	"github.com/soundprediction/cogito/pkg/logger"
	"github.com/soundprediction/cogito/pkg/server"
	"github.com/soundprediction/cogito/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Cogito HTTP server",
	Long: `Start the Cogito HTTP server to provide REST API access to the reasoning engine.

The server provides endpoints for:
- Validating graphs against causal, epistemic and structural rules
- Propagating confidence and activation
- Analyzing contradictions, connectivity and critical paths
- Archiving and restoring graph snapshots
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// History flags
	serverCmd.Flags().Bool("history", false, "Enable the snapshot archive")
	serverCmd.Flags().String("history-path", "./cogito_history", "Snapshot archive directory")
	serverCmd.Flags().Bool("history-in-memory", false, "Keep the snapshot archive in memory")

	// Database flags
	serverCmd.Flags().String("db-driver", "", "Graph database driver (neo4j)")
	serverCmd.Flags().String("db-uri", "", "Graph database URI")
	serverCmd.Flags().String("db-username", "", "Graph database username")
	serverCmd.Flags().String("db-password", "", "Graph database password")
	serverCmd.Flags().String("db-database", "", "Graph database name")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for telemetry (engine errors)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize engine
	fmt.Println("Initializing Cogito...")
	engine, err := initializeEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Cogito: %w", err)
	}

	// Create and setup server
	srv := server.New(cfg, engine)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if err := engine.Close(shutdownCtx); err != nil {
			return fmt.Errorf("engine shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// History flags
	if cmd.Flags().Changed("history") {
		cfg.History.Enabled, _ = cmd.Flags().GetBool("history")
	}
	if cmd.Flags().Changed("history-path") {
		cfg.History.Path, _ = cmd.Flags().GetString("history-path")
	}
	if cmd.Flags().Changed("history-in-memory") {
		cfg.History.InMemory, _ = cmd.Flags().GetBool("history-in-memory")
	}

	// Database flags
	if cmd.Flags().Changed("db-driver") {
		cfg.Database.Driver, _ = cmd.Flags().GetString("db-driver")
	}
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Database.Driver != "" && cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required for driver %s", cfg.Database.Driver)
	}
	return nil
}

// initializeEngine assembles the engine client from configuration.
func initializeEngine(cfg *config.Config) (cogito.Engine, error) {
	var handler slog.Handler = logger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	})

	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry handler: %w", err)
		}
		handler = parquetHandler
	}
	log := slog.New(handler)

	opts := []cogito.Option{cogito.WithLogger(log)}

	if cfg.History.Enabled {
		historyCfg := history.DefaultConfig(cfg.History.Path)
		if cfg.History.InMemory {
			historyCfg = history.InMemoryConfig()
		}
		historyCfg.SyncWrites = cfg.History.SyncWrites
		historyCfg.Logger = log

		store, err := history.Open(historyCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot archive: %w", err)
		}
		opts = append(opts, cogito.WithHistory(store))
	}

	if cfg.Database.Driver != "" {
		switch cfg.Database.Driver {
		case "neo4j":
			neo4jDriver, err := driver.NewNeo4jDriver(
				cfg.Database.URI,
				cfg.Database.Username,
				cfg.Database.Password,
				cfg.Database.Database,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
			}

			var store driver.GraphStore = neo4jDriver
			if cfg.CircuitBreaker.Enabled {
				var alerter alert.Alerter = &alert.NoOpAlerter{}
				if cfg.Alert.Enabled {
					alerter = alert.NewEmailAlerter(cfg.Alert)
				}
				store = driver.NewCircuitBreakerStore(store, cfg.CircuitBreaker, alerter, "neo4j")
			}
			opts = append(opts, cogito.WithGraphStore(store))
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
		}
	}

	return cogito.NewClient(cogito.ConfigFromEngine(cfg.Engine), opts...), nil
}
