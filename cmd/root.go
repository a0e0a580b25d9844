package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cyanguide",
	Short: "Chromium OS build guide for the Acer Chromebook R11 with an AI build assistant",
	Long: `cyanguide serves, renders and reads the Cyan build guide: every step for
building and flashing Chromium OS on the Acer Chromebook R11 (Braswell),
with copyable commands and a streaming assistant that answers questions
about the build.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
