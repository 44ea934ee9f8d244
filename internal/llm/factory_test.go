package llm

import (
	"strings"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"openai", Config{Provider: "openai", APIKey: "sk-test"}, "openai", false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "sk-test"}, "anthropic", false},
		{"claude alias", Config{Provider: "claude", APIKey: "sk-test"}, "anthropic", false},
		{"case insensitive", Config{Provider: "Ollama"}, "ollama", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "bard"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if provider.Name() != tt.wantName {
				t.Errorf("expected provider %q, got %q", tt.wantName, provider.Name())
			}
		})
	}
}

func TestNewProvider_UnknownListsSupported(t *testing.T) {
	_, err := NewProvider(Config{Provider: "bard"})
	if err == nil || !strings.Contains(err.Error(), "supported: ollama, openai, anthropic") {
		t.Errorf("unexpected error: %v", err)
	}
}
