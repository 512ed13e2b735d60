package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/FocusBridge/internal/config"
	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "focusbridge",
		Short: "FocusBridge - window screenshots and control for automation clients",
		Long: `FocusBridge captures the viewport of a desktop window and hands it to
automation clients as a data URI, bounded in size and encoded as PNG or JPEG.

Features:
  • Capture windows via X11, the desktop portal, or the OS screenshot API
  • Downscale to a maximum width without upscaling
  • PNG or JPEG output with a quality knob
  • Resize windows in logical or physical pixels
  • WebSocket command channel with a REST mirror
  • Automatic port discovery`,
		SilenceUsage: true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/focusbridge/config.yaml)")
	rootCmd.PersistentFlags().Uint16("port", 0, "base port for the bridge server (default is 9223)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human readable console logs")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig loads the configuration, layers the global flags on top and
// initializes the logger from the result
func loadConfig(cmd *cobra.Command) (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	v := configMgr.GetViper()
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"server.base_port": "port",
		"log_level":        "log-level",
		"log_pretty":       "log-pretty",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}
	if err := configMgr.Reload(); err != nil {
		return nil, err
	}

	logger.Init(config.LoggerOptions(configMgr.Get()))
	return configMgr, nil
}
