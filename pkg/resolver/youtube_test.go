package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtu.be/dQw4w9WgXcQ", true},
		{"www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"never gonna give you up", false},
		{"rick astley", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.input))
		})
	}
}

func TestIsUnsupportedURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain video", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", false},
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", true},
		{"video inside playlist", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123", true},
		{"shorts", "https://www.youtube.com/shorts/abc12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnsupportedURL(tt.input))
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extras", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"garbage", "https://example.com/video", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVideoID(tt.input))
		})
	}
}
