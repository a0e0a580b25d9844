package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/tui"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the guide in the terminal",
	Long: `Opens the guide in an interactive terminal reader. The navigation panel
follows your scroll position, tab moves focus to it and enter jumps to a
section. c copies the code sample in view; ? opens the build assistant.`,
	RunE: runRead,
}

func init() {
	readCmd.Flags().String("style", "auto", "glamour style: auto, dark, light, notty")
	readCmd.Flags().Bool("no-chat", false, "hide the build assistant")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGuide(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var widget *chat.Widget
	if noChat, _ := cmd.Flags().GetBool("no-chat"); !noChat {
		widget, _, err = newWidget(ctx, cfg, g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: assistant disabled: %v\n", err)
		}
	}

	style, _ := cmd.Flags().GetString("style")
	m := tui.New(ctx, g, widget, tui.Options{Style: style})
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	return m.Err()
}
