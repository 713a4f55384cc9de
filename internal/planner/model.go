package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
	"github.com/tmc/langchaingo/llms/openai"
)

// ModelConfig selects and configures the language model.
type ModelConfig struct {
	// Provider is "openai", "mock" or "none".
	Provider string
	Model    string
	Token    string
	BaseURL  string
	// Responses feeds the mock provider.
	Responses []string
}

// mockPlan lets the mock provider produce a usable site offline.
const mockPlan = `{"components":["AgentInfo","ChatInterface"],"layout":["header","chat"],"actions":["send message"],"user_inputs":["message"],"theme":"clean","api_endpoints":["maistro"]}`

// NewModel builds the configured model. The "none" provider, or an openai
// provider without a token, yields a nil model.
func NewModel(cfg ModelConfig) (llms.Model, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "mock", "fake":
		responses := cfg.Responses
		if len(responses) == 0 {
			responses = []string{mockPlan}
		}
		return &syncModel{model: fake.NewFakeLLM(responses)}, nil
	case "openai":
		if cfg.Token == "" {
			return nil, nil
		}
		opts := []openai.Option{openai.WithToken(cfg.Token)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("planner: openai model: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("planner: unknown llm provider %q", cfg.Provider)
	}
}

// syncModel serializes calls to a model that keeps unguarded state, such as
// the fake's response cursor, so one instance can serve concurrent runs.
type syncModel struct {
	mu    sync.Mutex
	model llms.Model
}

func (m *syncModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model.GenerateContent(ctx, messages, options...)
}

func (m *syncModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model.Call(ctx, prompt, options...)
}
