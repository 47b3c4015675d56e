package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nleskov/modelscout/internal/model"
)

// Provider is the optional language-understanding collaborator. The
// pipeline must function without it: pattern extraction is authoritative
// and sentiment defaults to neutral when a provider is absent or errors.
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractModelNames extracts specific product model names from free text.
	ExtractModelNames(ctx context.Context, text string) ([]string, error)

	// ScoreSentiment scores the sentiment of a product mention in [-1, 1].
	ScoreSentiment(ctx context.Context, text string) (float64, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   20,
		MaxTokens: 300,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig, httpProxy, httpsProxy, noProxy string) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
}

const extractSystemPrompt = "You extract specific product model names from text and return them as a JSON array of strings."

const sentimentSystemPrompt = "You score product sentiment and return a single number between -1 and 1."

// BuildExtractPrompt constructs the model-name extraction prompt.
func BuildExtractPrompt(text string) string {
	return fmt.Sprintf(`Given the following text, extract the names of specific product models mentioned (e.g., Dyson V15 Detect, iPhone 14, Sony WH-1000XM5).
Ignore vague mentions like 'Apple' or 'Dyson' without a model qualifier.
Return only the product model names as a JSON array of strings.

Text: %s`, text)
}

// BuildSentimentPrompt constructs the sentiment scoring prompt.
func BuildSentimentPrompt(text string) string {
	return fmt.Sprintf(`Analyze the sentiment of this text regarding a product. Score between -1 and 1:
-1 = extremely negative
0 = neutral
1 = extremely positive

Return only a single number between -1 and 1.

Text: %s`, text)
}

var jsonArrayPattern = regexp.MustCompile(`\[[^\[\]]*\]`)

// ParseModelList parses an LLM response into a list of model names.
// Accepts a bare JSON array or an array embedded in surrounding prose.
func ParseModelList(content string) []string {
	content = strings.TrimSpace(content)

	var names []string
	if err := json.Unmarshal([]byte(content), &names); err == nil {
		return cleanNames(names)
	}

	if match := jsonArrayPattern.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &names); err == nil {
			return cleanNames(names)
		}
		// Last resort: split the bracketed body on commas
		body := strings.Trim(match, "[]")
		for _, item := range strings.Split(body, ",") {
			item = strings.Trim(strings.TrimSpace(item), `"'`)
			if item != "" {
				names = append(names, item)
			}
		}
	}

	return names
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseSentiment parses an LLM response into a score clamped to [-1, 1].
func ParseSentiment(content string) (float64, error) {
	match := numberPattern.FindString(content)
	if match == "" {
		return 0, fmt.Errorf("no numeric score in response: %q", content)
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score: %w", err)
	}

	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score, nil
}
