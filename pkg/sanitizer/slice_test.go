package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "remove duplicates after normalization",
			input: []string{"https://example.com/a.png", "http://www.example.com/a.png/", "example.com/b.png"},
			want:  []string{"https://example.com/a.png", "https://example.com/b.png"},
		},
		{
			name:  "filter unusable values",
			input: []string{"", "  ", "example.com/a.png"},
			want:  []string{"https://example.com/a.png"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSlice(tt.input, SanitizeURL)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeSlice() = %v, want %v", got, tt.want)
			}
		})
	}
}
