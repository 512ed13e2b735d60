package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/bryanchriswhite/FocusBridge/internal/bridge"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a window as a data URI",
	Long: `Capture the viewport of a window and print it as a data URI, or write
the decoded image to a file with --output.

The window defaults to "main": the first window matching
window.main_pattern, or the focused window when no pattern is set.`,
	Example: `  # Capture the main window as PNG
  focusbridge screenshot

  # JPEG at quality 70, at most 1280 pixels wide
  focusbridge screenshot --format jpeg --quality 70 --max-width 1280

  # Capture a window by class and save it
  focusbridge screenshot --window firefox --output shot.png`,
	RunE: runScreenshot,
}

var (
	shotWindow   string
	shotFormat   string
	shotQuality  int
	shotMaxWidth uint32
	shotOutput   string
)

func init() {
	rootCmd.AddCommand(screenshotCmd)

	screenshotCmd.Flags().StringVarP(&shotWindow, "window", "w", "", "window id, class or title (default \"main\")")
	screenshotCmd.Flags().StringVarP(&shotFormat, "format", "f", "", "output format (png or jpeg, default from config)")
	screenshotCmd.Flags().IntVarP(&shotQuality, "quality", "q", 0, "JPEG quality 0-100 (default from config)")
	screenshotCmd.Flags().Uint32Var(&shotMaxWidth, "max-width", 0, "maximum width in pixels (default from config)")
	screenshotCmd.Flags().StringVarP(&shotOutput, "output", "o", "", "write the decoded image to this file instead of printing the data URI")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(configMgr)
	if err != nil {
		return err
	}
	defer a.Close()

	captureArgs := bridge.CaptureArgs{
		WindowID: shotWindow,
		Format:   shotFormat,
	}
	if cmd.Flags().Changed("quality") {
		captureArgs.Quality = &shotQuality
	}
	if cmd.Flags().Changed("max-width") {
		captureArgs.MaxWidth = &shotMaxWidth
	}

	resp := a.handler.Call(context.Background(), bridge.CommandCaptureScreenshot, captureArgs)
	if !resp.Success {
		return fmt.Errorf("%s (%s)", resp.Error, resp.ErrorKind)
	}
	result := resp.Data.(*bridge.CaptureResult)

	if shotOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.DataURI)
		return nil
	}

	data, err := decodeDataURI(result.DataURI)
	if err != nil {
		return err
	}
	if err := os.WriteFile(shotOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", shotOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s screenshot of window %d to %s\n", result.Format, result.Window, shotOutput)
	return nil
}

// decodeDataURI returns the payload bytes of a base64 data URI
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid data URI payload: %w", err)
	}
	return data, nil
}
