package utils

import (
	"reflect"
	"testing"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"café", "cafe"},
		{"naïve", "naive"},
		{"résumé", "resume"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RemoveAccents(tt.in); got != tt.want {
			t.Errorf("RemoveAccents(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"camelCase", []string{"camel", "Case"}},
		{"PascalCase", []string{"Pascal", "Case"}},
		{"XMLHttpRequest", []string{"XML", "Http", "Request"}},
		{"simple", []string{"simple"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitCamelCase(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCamelCase(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToPascalCaseAdvanced(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chat_request", "ChatRequest"},
		{"chat-request", "ChatRequest"},
		{"chatRequest", "ChatRequest"},
		{"create_chat_completion", "CreateChatCompletion"},
		{"Message.content", "MessageContent"},
		{"café_menu", "CafeMenu"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToPascalCaseAdvanced(tt.in); got != tt.want {
			t.Errorf("ToPascalCaseAdvanced(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToCamelCaseAdvanced(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chat_request", "chatRequest"},
		{"ChatRequest", "chatRequest"},
		{"max_tokens", "maxTokens"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToCamelCaseAdvanced(tt.in); got != tt.want {
			t.Errorf("ToCamelCaseAdvanced(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToSnakeCaseAdvanced(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ChatRequest", "chat_request"},
		{"maxTokens", "max_tokens"},
		{"XMLHttpRequest", "xml_http_request"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToSnakeCaseAdvanced(tt.in); got != tt.want {
			t.Errorf("ToSnakeCaseAdvanced(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
