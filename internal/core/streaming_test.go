package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCleanTextPayload(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM is sanitized",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: "??abc",
		},
		{
			name:     "latin1 accent replaced",
			input:    []byte("Cal\xe7a"),
			expected: "Cal?a",
		},
		{
			name:     "valid multibyte kept",
			input:    []byte("Código SKU"),
			expected: "Código SKU",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanTextPayload(tt.input)
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", string(got), tt.expected)
			}
		})
	}
}

func TestReadPayload(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		got, err := readPayload(strings.NewReader("abc"), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "abc" {
			t.Errorf("got %q, want %q", got, "abc")
		}
	})

	t.Run("exactly at limit", func(t *testing.T) {
		if _, err := readPayload(strings.NewReader("abcde"), 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := readPayload(bytes.NewReader(make([]byte, 100)), 10)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("got %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("unlimited", func(t *testing.T) {
		got, err := readPayload(bytes.NewReader(make([]byte, 4096)), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 4096 {
			t.Errorf("read %d bytes, want 4096", len(got))
		}
	})

	t.Run("nil reader", func(t *testing.T) {
		if _, err := readPayload(nil, 0); err == nil {
			t.Fatal("expected error for nil reader")
		}
	})
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma header", "Código SKU,Nome do Produto\nA,B\n", ','},
		{"semicolon header", "Código SKU;Nome do Produto;Preço\n", ';'},
		{"skips blank lines", "\n\n  \nA;B;C\n", ';'},
		{"decimal commas in header row still semicolon", "a;b;c,d\n", ';'},
		{"empty defaults to comma", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDelimiter([]byte(tt.input)); got != tt.want {
				t.Errorf("sniffDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}
