package llm

import (
	"testing"
)

func TestParseModelList_BareJSON(t *testing.T) {
	names := ParseModelList(`["Dyson V15 Detect", "Shark Navigator Lift-Away"]`)

	if len(names) != 2 {
		t.Fatalf("Expected 2 names, got %d: %v", len(names), names)
	}
	if names[0] != "Dyson V15 Detect" {
		t.Errorf("Expected 'Dyson V15 Detect', got '%s'", names[0])
	}
}

func TestParseModelList_EmbeddedInProse(t *testing.T) {
	content := `Here are the product models I found:
["iPhone 15 Pro", "Samsung Galaxy S24 Ultra"]
Let me know if you need more.`

	names := ParseModelList(content)
	if len(names) != 2 {
		t.Fatalf("Expected 2 names, got %d: %v", len(names), names)
	}
	if names[1] != "Samsung Galaxy S24 Ultra" {
		t.Errorf("Expected 'Samsung Galaxy S24 Ultra', got '%s'", names[1])
	}
}

func TestParseModelList_MalformedArray(t *testing.T) {
	// Unquoted items should still split on commas
	names := ParseModelList(`[Dyson V15, Miele Triflex HX2]`)
	if len(names) != 2 {
		t.Fatalf("Expected 2 names, got %d: %v", len(names), names)
	}
	if names[0] != "Dyson V15" {
		t.Errorf("Expected 'Dyson V15', got '%s'", names[0])
	}
}

func TestParseModelList_Empty(t *testing.T) {
	for _, content := range []string{"", "no products mentioned", "[]"} {
		if names := ParseModelList(content); len(names) != 0 {
			t.Errorf("Expected no names for %q, got %v", content, names)
		}
	}
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		content string
		want    float64
		wantErr bool
	}{
		{"0.8", 0.8, false},
		{"-0.5", -0.5, false},
		{"The sentiment score is 0.3", 0.3, false},
		{"5", 1, false},    // Clamped
		{"-3.2", -1, false}, // Clamped
		{"no score here", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSentiment(tt.content)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSentiment(%q): expected error, got %v", tt.content, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSentiment(%q): unexpected error: %v", tt.content, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSentiment(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error for disabled provider, got %v", err)
	}
	if provider != nil {
		t.Error("Expected nil provider when disabled")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "skynet"})
	if err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProvider_OpenAIRequiresKey(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Error("Expected error when OpenAI API key is missing")
	}
}
