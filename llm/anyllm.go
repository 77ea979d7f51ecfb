package llm

import (
	"context"
	"fmt"
	"sync"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/c360studio/knowcore/model"
)

// any-llm-go's Provider talks to its backend directly rather than going
// through the BuildURL/SetHeaders/BuildRequestBody/ParseResponse shape the
// hand-rolled Provider interface assumes, so it is registered in a
// parallel registry keyed by EndpointConfig.Provider and consulted by
// doRequest before falling back to the HTTP-provider registry.
var (
	anyllmMu       sync.RWMutex
	anyllmBackends = make(map[string]anyllmlib.Provider)
)

// RegisterAnyLLMBackend wires a constructed any-llm-go backend under a
// provider name an endpoint's Provider field can select.
func RegisterAnyLLMBackend(name string, backend anyllmlib.Provider) {
	anyllmMu.Lock()
	defer anyllmMu.Unlock()
	anyllmBackends[name] = backend
}

// NewAnyLLMBackend constructs a named any-llm-go backend. providerName is
// one of "openai", "anthropic", "gemini", "ollama".
func NewAnyLLMBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch providerName {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("llm: unsupported any-llm-go backend %q", providerName)
	}
}

func getAnyLLMBackend(name string) (anyllmlib.Provider, bool) {
	anyllmMu.RLock()
	defer anyllmMu.RUnlock()
	b, ok := anyllmBackends[name]
	return b, ok
}

// completeViaAnyLLM sends req through an any-llm-go backend instead of the
// hand-rolled HTTP path, translating Request/Response at the boundary.
func completeViaAnyLLM(ctx context.Context, backend anyllmlib.Provider, ep *model.EndpointConfig, req Request) (*Response, error) {
	messages := make([]anyllmlib.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, anyllmlib.Message{Role: m.Role, Content: m.Content})
	}

	params := anyllmlib.CompletionParams{Model: ep.Model, Messages: messages}
	if req.Temperature != nil {
		t := *req.Temperature
		params.Temperature = &t
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		params.MaxTokens = &mt
	}

	resp, err := backend.Completion(ctx, params)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("any-llm-go completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, NewFatalError(fmt.Errorf("any-llm-go: empty choices in response"))
	}

	choice := resp.Choices[0]
	out := &Response{
		Content:      choice.Message.ContentString(),
		Model:        ep.Model,
		FinishReason: choice.FinishReason,
	}
	if resp.Usage != nil {
		out.Usage = TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		out.TokensUsed = resp.Usage.TotalTokens
	}
	return out, nil
}
