package commands

import (
	"fmt"
	"strconv"

	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var resizeCmd = &cobra.Command{
	Use:   "resize WIDTH HEIGHT",
	Short: "Resize a window",
	Long: `Resize a window's viewport. Sizes are logical pixels unless --physical
is given; logical pixels are multiplied by window.scale_factor.

The result is printed as JSON. A window that cannot be resized is reported
in the result, not as a command failure.`,
	Example: `  # Resize the main window to 1280x720 logical pixels
  focusbridge resize 1280 720

  # Resize a specific window in physical pixels
  focusbridge resize 1920 1080 --window 0x3a00007 --physical`,
	Args: cobra.ExactArgs(2),
	RunE: runResize,
}

var (
	resizeWindow   string
	resizePhysical bool
	resizeFormat   string
)

func init() {
	rootCmd.AddCommand(resizeCmd)

	resizeCmd.Flags().StringVarP(&resizeWindow, "window", "w", "", "window id, class or title (default \"main\")")
	resizeCmd.Flags().BoolVar(&resizePhysical, "physical", false, "treat WIDTH and HEIGHT as physical pixels")
	resizeCmd.Flags().StringVarP(&resizeFormat, "format", "f", "json", "output format (json or yaml)")
}

func parseDimension(name, value string) (uint32, error) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, value)
	}
	return uint32(n), nil
}

func runResize(cmd *cobra.Command, args []string) error {
	width, err := parseDimension("width", args[0])
	if err != nil {
		return err
	}
	height, err := parseDimension("height", args[1])
	if err != nil {
		return err
	}

	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(configMgr)
	if err != nil {
		return err
	}
	defer a.Close()

	logical := !resizePhysical
	result := a.handler.Resize(window.ResizeParams{
		Width:    width,
		Height:   height,
		WindowID: resizeWindow,
		Logical:  &logical,
	})

	switch resizeFormat {
	case "json":
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	case "yaml":
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(result); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format: %s (use 'json' or 'yaml')", resizeFormat)
	}

	if !result.Success {
		return fmt.Errorf("resize failed: %s", result.Error)
	}
	return nil
}
