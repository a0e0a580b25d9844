package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/config"
	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the build assistant in the terminal",
	Long: `Starts a conversation with the build assistant. Replies stream as they
arrive; the conversation keeps its context until you quit. Type /reset to
start over, /quit or Ctrl+D to leave.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// newWidget builds a chat widget for one reader from the config. The client
// is returned too so callers can reset the conversation.
func newWidget(ctx context.Context, cfg *config.Config, g *guide.Guide) (*chat.Widget, *llm.Client, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}
	provider, err := createLLMProviderFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client := llm.NewClient(provider, sessionConfig(cfg, g))
	widget := chat.New(client,
		chat.WithGreeting(g.Greeting()),
		chat.KeepPartialOnError(cfg.Chat.KeepPartialOnError),
		chat.WithTimeout(timeout),
	)
	return widget, client, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGuide(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	widget, client, err := newWidget(ctx, cfg, g)
	if err != nil {
		return err
	}
	widget.Open()
	fmt.Println(g.Greeting())
	fmt.Println()

	out := &replyPrinter{widget: widget}
	cancel := widget.Subscribe(out.handle)
	defer cancel()

	for {
		prompt := promptui.Prompt{Label: "you"}
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/reset":
			client.Reset()
			fmt.Println("Conversation reset.")
			continue
		}

		widget.SetInput(line)
		out.reset()
		done, ok := widget.Send(ctx)
		if !ok {
			continue
		}
		<-done
		fmt.Println()
		if ctx.Err() != nil {
			return nil
		}
	}
}

// replyPrinter streams the newest assistant message to stdout as it grows.
type replyPrinter struct {
	widget *chat.Widget

	mu      sync.Mutex
	printed int
	failed  bool
}

func (p *replyPrinter) reset() {
	p.mu.Lock()
	p.printed, p.failed = 0, false
	p.mu.Unlock()
}

func (p *replyPrinter) handle(ev chat.Event) {
	if ev.Kind != chat.EventTranscript {
		return
	}
	tr := p.widget.Transcript()
	if len(tr) == 0 {
		return
	}
	last := tr[len(tr)-1]
	if last.Role != llm.RoleModel {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if last.IsError {
		if !p.failed {
			p.failed = true
			if p.printed > 0 {
				fmt.Println()
			}
			fmt.Fprintln(os.Stderr, chat.ErrorText)
		}
		return
	}
	if len(last.Text) > p.printed {
		fmt.Print(last.Text[p.printed:])
		p.printed = len(last.Text)
	}
}
