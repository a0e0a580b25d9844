package llm

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"
)

// GoogleProvider implements Provider using the Gemini API through the
// official genai client. Conversation history is held by the genai Chat.
type GoogleProvider struct {
	cli *genai.Client
}

// NewGoogleProvider creates a Gemini provider authenticated with apiKey.
func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GoogleProvider{cli: cli}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// GenAI exposes the underlying client for callers that need other Gemini
// endpoints, such as embeddings.
func (p *GoogleProvider) GenAI() *genai.Client { return p.cli }

func (p *GoogleProvider) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	cfg = cfg.withDefaults()

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Temperature),
	}
	if cfg.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
	}

	chat, err := p.cli.Chats.Create(ctx, cfg.Model, gc, nil)
	if err != nil {
		return nil, &RemoteServiceError{Provider: p.Name(), Op: "create chat", Err: err}
	}
	return &googleSession{chat: chat}, nil
}

type googleSession struct {
	chat  *genai.Chat
	guard busyGuard
}

func (s *googleSession) SendStreaming(ctx context.Context, message string) Stream {
	return once(func(yield func(string, error) bool) {
		if !s.guard.acquire() {
			yield("", ErrSessionBusy)
			return
		}
		defer s.guard.release()

		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", &RemoteServiceError{Provider: "google", Op: "stream", Err: err})
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	})
}
