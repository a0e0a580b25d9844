package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/guide"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [pattern]",
	Short: "List the sections of the guide",
	Long: `Prints the section outline. With a pattern, prints only the sections whose
path matches it, e.g. "prerequisites/*" or "**/manual-*".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().Bool("json", false, "output sections as JSON")
	rootCmd.AddCommand(sectionsCmd)
}

type sectionRow struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
	Depth int    `json:"depth"`
}

func runSections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGuide(cfg)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if len(args) == 0 && !jsonOutput {
		fmt.Print(g.Outline())
		return nil
	}

	pattern := "**"
	if len(args) == 1 {
		pattern = args[0]
	}
	matched, err := g.Match(pattern)
	if err != nil {
		return err
	}

	rows := make([]sectionRow, 0, len(matched))
	for _, s := range matched {
		rows = append(rows, newSectionRow(g, s))
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Println("No sections match.")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("%-40s %s\n", r.Path, r.Title)
	}
	return nil
}

func newSectionRow(g *guide.Guide, s *guide.Section) sectionRow {
	return sectionRow{ID: s.ID, Path: g.Path(s.ID), Title: s.Title, Depth: g.Depth(s.ID)}
}
