package config

import (
	"testing"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single segment", "backup", "backup"},
		{"trailing slash", "backup/", "backup"},
		{"leading slash", "/backup", "backup"},
		{"both slashes", "/hosts/web1/", "hosts/web1"},
		{"double slash middle", "hosts//web1", "hosts/web1"},
		{"multiple slashes", "hosts///web1///", "hosts/web1"},
		{"only slashes", "///", ""},
		{"backslashes", "hosts\\web1", "hosts/web1"},
		{"dot segment", "./hosts/web1", "hosts/web1"},
		{"only dot", "./", ""},
		{"parent segment collapsed", "hosts/../web1", "web1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePrefix(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizePrefix(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
