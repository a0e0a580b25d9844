package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure cyanguide with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the assistant's provider and model and writes a .cyanguide.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		if env := config.APIKeyEnvVar(cfg.Provider); env != "" {
			fmt.Printf("Remember to export %s (or put it in .env) before starting the assistant.\n", env)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
