package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "fits", input: "http://localhost:8000", maxWidth: 30, want: "http://localhost:8000"},
		{name: "exact", input: "abcdef", maxWidth: 6, want: "abcdef"},
		{name: "truncated", input: "local: /home/me/tasks.yaml", maxWidth: 10, want: "local: ..."},
		{name: "tiny width", input: "anything", maxWidth: 2, want: "..."},
		{name: "wide runes", input: "日本語のタスク", maxWidth: 7, want: "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateANSI(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("TruncateANSI(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI_PreservesEscapes(t *testing.T) {
	styled := "\x1b[31mremote: https://analytics.example.com/api/analytics/\x1b[0m"

	got := TruncateANSI(styled, 20)
	if w := lipgloss.Width(got); w != 20 {
		t.Errorf("visible width = %d, want 20 (%q)", w, got)
	}
	if got[:5] != "\x1b[31m" {
		t.Errorf("leading escape sequence lost: %q", got)
	}
}
