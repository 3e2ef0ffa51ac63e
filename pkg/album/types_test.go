package album

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKey(t *testing.T) {
	tests := []struct {
		key      string
		expected MediaType
	}{
		{"wedding-uploads/a.mp4", MediaTypeVideo},
		{"wedding-uploads/a.mov", MediaTypeVideo},
		{"wedding-uploads/a.webm", MediaTypeVideo},
		{"wedding-uploads/a.hevc", MediaTypeVideo},
		{"wedding-uploads/a.3gpp", MediaTypeVideo},
		{"wedding-uploads/a.mkv", MediaTypeVideo},
		{"wedding-uploads/a.x-matroska", MediaTypeVideo},
		{"wedding-uploads/a.MP4", MediaTypeVideo},
		{"wedding-uploads/a.jpg", MediaTypeImage},
		{"wedding-uploads/a.png", MediaTypeImage},
		{"wedding-uploads/a.heic", MediaTypeImage},
		{"wedding-uploads/a.gif", MediaTypeImage},
		{"wedding-uploads/no-extension", MediaTypeImage},
		{"wedding-uploads/a.pdf", MediaTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyKey(tt.key))
		})
	}
}

func TestIsAllowedType(t *testing.T) {
	allowed := []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"image/heic", "image/heif", "image/avif", "image/svg+xml",
		"video/mp4", "video/mov", "video/quicktime", "video/webm",
		"video/hevc", "video/3gpp", "video/x-matroska",
	}
	for _, mimeType := range allowed {
		assert.True(t, IsAllowedType(mimeType), mimeType)
	}

	rejected := []string{
		"application/pdf", "text/html", "audio/mpeg", "image/tiff", "",
	}
	for _, mimeType := range rejected {
		assert.False(t, IsAllowedType(mimeType), mimeType)
	}
}
