package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/llm"
	mcpserver "github.com/ziadkadry99/cyanguide/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the guide's sections, search and the build assistant as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := loadGuide(cfg)
		if err != nil {
			return err
		}
		timeout, err := cfg.Timeout()
		if err != nil {
			return err
		}

		ctx := context.Background()
		var provider llm.Provider
		if p, err := createLLMProviderFromConfig(ctx, cfg); err == nil {
			provider = p
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ask_guide disabled: %v\n", err)
		}

		cachePath, _ := cmd.Flags().GetString("index-cache")
		searcher := createSearcher(ctx, cfg, g, cachePath)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "cyanguide MCP server started on stdio (sections=%d)\n", len(g.Anchors()))

		srv := mcpserver.NewServer(g, searcher, provider, sessionConfig(cfg, g), mcpserver.WithTimeout(timeout))
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().String("index-cache", "", "file to persist semantic index embeddings in")
	rootCmd.AddCommand(mcpCmd)
}
