package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// ModelType is an enum for the available Groq models.
type ModelType string

const (
	// DefaultModel is the default model to use if none is specified
	DefaultModel  ModelType = "llama-3.1-70b-versatile"
	FastModel     ModelType = "llama-3.1-8b-instant"
	MixtralModel  ModelType = "mixtral-8x7b-32768"
	OSSLargeModel ModelType = "openai/gpt-oss-120b"
	OSSSmallModel ModelType = "openai/gpt-oss-20b"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// ParseModel validates a model name coming from a flag or request body.
func ParseModel(name string) (ModelType, error) {
	if name == "" {
		return DefaultModel, nil
	}
	switch ModelType(name) {
	case DefaultModel, FastModel, MixtralModel, OSSLargeModel, OSSSmallModel:
		return ModelType(name), nil
	default:
		return "", fmt.Errorf("invalid model type: %s", name)
	}
}

// Groq returns a chat completion client for the given model. An empty baseURL
// selects the hosted Groq endpoint.
func Groq(model ModelType, apiKey, baseURL string) (*openai.LLM, error) {
	if _, err := ParseModel(string(model)); err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is not set")
	}
	if baseURL == "" {
		baseURL = groqBaseURL
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(string(model)),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init Groq client: %w", err)
	}

	return llm, nil
}
