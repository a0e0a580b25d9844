package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/progress"
	"github.com/ziadkadry99/cyanguide/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Write the guide as a static website",
	Long: `Renders the guide into a self-contained directory: index.html, style.css,
script.js and search-index.json. Search runs in the browser. The assistant
widget is included only when --chat-endpoint points at a running
` + "`cyanguide serve`" + `.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().StringP("output", "o", "site", "output directory")
	siteCmd.Flags().String("chat-endpoint", "", "URL of a cyanguide chat endpoint, e.g. https://guide.example.com/api/chat")
	siteCmd.Flags().String("base-path", "", "URL prefix the site is served under")
	siteCmd.Flags().Bool("open", false, "open the generated page in a browser")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGuide(cfg)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	chatEndpoint, _ := cmd.Flags().GetString("chat-endpoint")
	basePath, _ := cmd.Flags().GetString("base-path")

	generator := site.NewGenerator(g, outputDir, site.Options{
		ChatEndpoint: chatEndpoint,
		BasePath:     basePath,
		Version:      Version,
	})
	generator.Reporter = progress.NewReporter("Rendering guide")
	count, err := generator.Generate()
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}

	fmt.Printf("Static site generated: %s (%d sections)\n", outputDir, count)

	if open, _ := cmd.Flags().GetBool("open"); open {
		page, err := filepath.Abs(filepath.Join(outputDir, "index.html"))
		if err != nil {
			return err
		}
		site.OpenBrowser(page)
	}
	return nil
}
