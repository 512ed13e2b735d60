package commands

import (
	"fmt"

	"github.com/bryanchriswhite/FocusBridge/internal/discovery"
	"github.com/spf13/cobra"
)

var portCmd = &cobra.Command{
	Use:   "port",
	Short: "Print the port serve would listen on",
	Long: `Print the first free port at or above server.base_port on
server.bind_address, trying up to 100 ports. The base port is printed
when none is free.`,
	RunE: runPort,
}

func init() {
	rootCmd.AddCommand(portCmd)
}

func runPort(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cfg := configMgr.Get()
	fmt.Fprintln(cmd.OutOrStdout(), discovery.FindAvailablePort(cfg.Server.BindAddress, cfg.Server.BasePort))
	return nil
}
