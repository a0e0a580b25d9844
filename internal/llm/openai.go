package llm

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
// The API is stateless, so each session keeps its own history and replays it
// on every send. Any OpenAI-compatible endpoint works via baseURL.
type OpenAIProvider struct {
	client *openai.Client
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		name:   "openai",
	}
}

// NewOpenAICompatibleProvider targets an OpenAI-compatible server such as
// Ollama's /v1 endpoint.
func NewOpenAICompatibleProvider(name, baseURL, apiKey string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	cfg = cfg.withDefaults()
	s := &openAISession{
		client:   p.client,
		provider: p.name,
		cfg:      cfg,
	}
	if cfg.SystemPrompt != "" {
		s.history = append(s.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: cfg.SystemPrompt,
		})
	}
	return s, nil
}

type openAISession struct {
	client   *openai.Client
	provider string
	cfg      SessionConfig
	guard    busyGuard
	history  []openai.ChatCompletionMessage
}

func (s *openAISession) SendStreaming(ctx context.Context, message string) Stream {
	return once(func(yield func(string, error) bool) {
		if !s.guard.acquire() {
			yield("", ErrSessionBusy)
			return
		}
		defer s.guard.release()

		msgs := append(slices.Clone(s.history), openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: message,
		})

		stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       s.cfg.Model,
			Messages:    msgs,
			Temperature: s.cfg.Temperature,
			Stream:      true,
		})
		if err != nil {
			yield("", &RemoteServiceError{Provider: s.provider, Op: "open stream", Err: err})
			return
		}
		defer stream.Close()

		var full strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield("", &RemoteServiceError{Provider: s.provider, Op: "stream", Err: err})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			if !yield(delta, nil) {
				// Abandoned turns are not recorded.
				return
			}
		}

		s.history = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: full.String(),
		})
	})
}
