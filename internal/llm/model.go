package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/voxrag/voxrag/internal/config"
	"github.com/voxrag/voxrag/internal/metrics"
)

// Model wraps langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	collector *metrics.Collector
}

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config, collector *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		collector: collector,
	}, nil
}

// Generate generates text based on a prompt.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if m.collector != nil {
		m.collector.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	}
	return response, nil
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate with system: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	if m.collector != nil {
		duration := time.Since(start)
		usage := response.Choices[0].GenerationInfo
		inTok, _ := usage["PromptTokens"].(int)
		outTok, _ := usage["CompletionTokens"].(int)
		m.collector.RecordLLMUsage(metrics.OpLLMGenerate, duration, int64(inTok), int64(outTok))
	}

	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// SynthesizeAnswer generates an answer from retrieved transcript context.
func (m *Model) SynthesizeAnswer(ctx context.Context, query string, context string) (string, error) {
	systemPrompt := `You are a helpful assistant answering questions about video transcripts. Answer the user's question based ONLY on the provided transcript excerpts.
If the excerpts don't contain enough information to answer the question, say so.
Be concise and mention which video an answer comes from when the excerpts identify it.`

	userPrompt := fmt.Sprintf(`Transcript excerpts:
%s

Question: %s

Answer:`, context, query)

	return m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
}
