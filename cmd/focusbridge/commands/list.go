package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows",
	Long: `List the windows FocusBridge can capture and resize.

The ID column is what --window and the windowId command argument accept,
along with the window class or title.`,
	Example: `  # List windows in table format (default)
  focusbridge list

  # List windows in JSON format
  focusbridge list --format json

  # Show the window "main" resolves to
  focusbridge list --main`,
	RunE: runList,
}

var (
	listFormat string
	listMain   bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
	listCmd.Flags().BoolVarP(&listMain, "main", "m", false, "show the window \"main\" resolves to")
}

func runList(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(configMgr)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if listMain {
		win, err := a.windows.Resolve(window.MainWindowID)
		if err != nil {
			return err
		}
		return showWindow(out, win)
	}

	windows, err := a.windows.ListWindows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	switch listFormat {
	case "json":
		return printJSON(out, windows)
	case "table":
		return printWindowsTable(out, windows)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printWindowsTable(out io.Writer, windows []*window.Info) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tCLASS\tTITLE\tPID\tSIZE\tFOCUSED")
	fmt.Fprintln(w, "--\t-----\t-----\t---\t----\t-------")

	for _, win := range windows {
		focused := ""
		if win.Focused {
			focused = "*"
		}
		fmt.Fprintf(w, "0x%x\t%s\t%s\t%d\t%dx%d\t%s\n",
			win.ID, win.Class, truncate(win.Title, 48), win.PID,
			win.Geometry.Width, win.Geometry.Height, focused)
	}

	return nil
}

func showWindow(out io.Writer, win *window.Info) error {
	if listFormat == "json" {
		return printJSON(out, win)
	}

	fmt.Fprintf(out, "ID:       0x%x\n", win.ID)
	fmt.Fprintf(out, "Title:    %s\n", win.Title)
	fmt.Fprintf(out, "Class:    %s\n", win.Class)
	fmt.Fprintf(out, "PID:      %d\n", win.PID)
	fmt.Fprintf(out, "Geometry: %dx%d at (%d, %d)\n",
		win.Geometry.Width, win.Geometry.Height,
		win.Geometry.X, win.Geometry.Y)

	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
