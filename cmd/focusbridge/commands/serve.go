package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/bridge"
	"github.com/bryanchriswhite/FocusBridge/internal/config"
	"github.com/bryanchriswhite/FocusBridge/internal/discovery"
	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FocusBridge server",
	Long: `Start the FocusBridge WebSocket/HTTP server.

Clients send JSON commands over ws://<addr>/ws; the same commands are
available as REST endpoints under /api. The first free port at or above
the base port is used.`,
	Example: `  # Start server on the first free port from 9223
  focusbridge serve

  # Start scanning from a custom base port
  focusbridge serve --port 9300

  # Start with specific config file
  focusbridge serve --config /path/to/config.yaml

  # Start with debug logging
  focusbridge serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	cfg := configMgr.Get()
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	configMgr.OnChange(func(cfg *config.Config) {
		logger.SetLevel(cfg.LogLevel)
	})
	configMgr.Watch()

	a, err := newApp(configMgr)
	if err != nil {
		return err
	}
	defer a.Close()

	port := discovery.FindAvailablePort(cfg.Server.BindAddress, cfg.Server.BasePort)
	addr := net.JoinHostPort(cfg.Server.BindAddress, strconv.Itoa(int(port)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := bridge.NewServer(a.handler)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	log.Info().
		Str("ws", fmt.Sprintf("ws://%s/ws", addr)).
		Str("api", fmt.Sprintf("http://%s/api", addr)).
		Msg("FocusBridge is running")
	fmt.Fprintln(cmd.OutOrStdout(), port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	log.Info().Msg("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
