package service

import (
	"math"
	"reflect"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWordErrorRate(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     float64
	}{
		{"exact match", "hello world", "hello world", 0},
		{"case and punctuation ignored", "Hello, World!", "hello world", 0},
		{"one substitution", "a b c d", "a x c d", 0.25},
		{"one deletion", "hello world", "hello", 0.5},
		{"one insertion", "hello world", "hello there world", 0.5},
		{"swap costs two edits", "one two three", "two one three", 2.0 / 3.0},
		{"both empty", "", "", 0},
		{"missing everything", "hello", "", 1},
		{"extra against empty", "", "noise", 1},
		{"repeated words distinct by position", "go go go", "go go", 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wordErrorRate(tt.expected, tt.actual)
			if !almostEqual(got, tt.want) {
				t.Errorf("wordErrorRate(%q, %q) = %g, want %g", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     float64
	}{
		{"exact match", "hello world", "hello world", 1},
		{"normalized match", "Hello, World!", "hello world", 1},
		{"one char off", "hello", "hella", 0.8},
		{"both empty", "", "", 1},
		{"empty actual", "hello", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchScore(tt.expected, tt.actual)
			if !almostEqual(got, tt.want) {
				t.Errorf("matchScore(%q, %q) = %g, want %g", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestMatchScore_NeverNegative(t *testing.T) {
	if got := matchScore("ab", "zzzzzzzzzzzzzzzz"); got < 0 {
		t.Errorf("expected clamped score >= 0, got %g", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "hello world", []string{"hello", "world"}},
		{"punctuation stripped", "Hello, world! (test)", []string{"hello", "world", "test"}},
		{"collapsed whitespace", "  a \t b\n c ", []string{"a", "b", "c"}},
		{"pure punctuation dropped", "... !!! ???", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
