package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cyanguide/internal/llm"
	"github.com/ziadkadry99/cyanguide/internal/server"
	"github.com/ziadkadry99/cyanguide/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the guide page and the build assistant",
	Long: `Serves the rendered guide over HTTP together with its JSON APIs and a
streaming chat proxy. The API key stays on the server; the page only talks
to /api/chat (server-sent events) or /ws/chat (WebSocket).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (defaults to server.addr)")
	serveCmd.Flags().Bool("open", false, "open the guide in a browser once listening")
	serveCmd.Flags().Bool("no-chat", false, "serve the guide without the assistant")
	serveCmd.Flags().String("index-cache", "", "file to persist semantic index embeddings in")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	g, err := loadGuide(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var provider llm.Provider
	if noChat, _ := cmd.Flags().GetBool("no-chat"); !noChat {
		provider, err = createLLMProviderFromConfig(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: assistant disabled: %v\n", err)
			provider = nil
		}
	}

	cachePath, _ := cmd.Flags().GetString("index-cache")
	searcher := createSearcher(ctx, cfg, g, cachePath)

	srv, err := server.New(server.Config{
		Addr:               cfg.Server.Addr,
		AllowAll:           cfg.Server.AllowAllOrigins,
		MaxSessions:        cfg.Server.MaxSessions,
		RequestTimeout:     timeout,
		KeepPartialOnError: cfg.Chat.KeepPartialOnError,
		Version:            Version,
	}, g, searcher, provider, sessionConfig(cfg, g))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "cyanguide %s\n", Version)
	fmt.Fprintf(os.Stderr, "  Sections: %d\n", len(g.Anchors()))
	if provider != nil {
		fmt.Fprintf(os.Stderr, "  Assistant: %s (%s)\n", provider.Name(), cfg.Model)
	}
	if searcher.Semantic() {
		fmt.Fprintln(os.Stderr, "  Search: semantic")
	}

	if open, _ := cmd.Flags().GetBool("open"); open {
		go site.OpenBrowser("http://" + browserHost(cfg.Server.Addr))
	}

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// browserHost turns a listen address into something a browser can open.
func browserHost(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return strings.Replace(addr, "0.0.0.0", "localhost", 1)
}
