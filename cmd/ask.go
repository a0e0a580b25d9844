package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the build assistant one question",
	Long:  `Sends one question to the build assistant and streams the answer to stdout.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("render", false, "render the finished answer as Markdown instead of streaming raw text")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	provider, err := createLLMProviderFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	client := llm.NewClient(provider, sessionConfig(cfg, g))

	render, _ := cmd.Flags().GetBool("render")
	var answer strings.Builder
	for fragment, err := range client.SendStreaming(ctx, question) {
		if err != nil {
			if !render && answer.Len() > 0 {
				fmt.Println()
			}
			fmt.Fprintln(os.Stderr, chat.ErrorText)
			return err
		}
		answer.WriteString(fragment)
		if !render {
			fmt.Print(fragment)
		}
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "\n"+chat.ErrorText)
		return err
	}

	if !render {
		fmt.Println()
		return nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println(answer.String())
		return nil
	}
	out, err := r.Render(answer.String())
	if err != nil {
		fmt.Println(answer.String())
		return nil
	}
	fmt.Print(out)
	return nil
}
