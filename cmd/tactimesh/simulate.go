package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tactimesh/internal/admin"
	"tactimesh/internal/config"
	"tactimesh/internal/logging"
	"tactimesh/internal/sim"
)

var (
	simPrintOnly  bool
	simConsole    bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time tactical simulator",
	Long:  "simulate starts the mesh simulator: node movement, connectivity, and message traffic.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New()
		ctx := logging.NewContext(context.Background(), logger)

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if simTick < 0 {
			return fmt.Errorf("--tick must be positive, got %s", simTick)
		}
		if simTick > 0 {
			cfg.TickOverride = simTick
		}
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			if d <= 0 {
				return fmt.Errorf("TICK_INTERVAL must be positive, got %s", envTick)
			}
			cfg.TickOverride = d
		}

		trackWriter, msgWriter, cleanup, err := newWriters(simPrintOnly, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		engine := sim.New(cfg, trackWriter, msgWriter)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var console *sim.ConsoleWriter
		if simConsole {
			console = sim.NewConsoleWriter(engine)
			engine.AddWriters(console, console)
		}

		srv := admin.NewServer(engine)
		go func() {
			logger.Info("admin server listening", "addr", simAdminAddr)
			if err := srv.Start(ctx, simAdminAddr); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Admin server failed: %v", err)
			}
		}()

		go engine.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		if console != nil {
			console.Quit()
			<-console.Done()
		}
		logger.Info("simulation stopped", "mission", engine.MissionName())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print tracks and messages to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simConsole, "console", false, "Render the live tactical console (TUI)")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/mission.yaml", "Path to mission configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/mission.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Position tick interval override (e.g. 5s, 15s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export track/message logs (JSONL)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin server listen address")
}
