package catalog

import (
	"context"
	"path"
	"strings"
)

// MaxImageBytes caps a single product image upload
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStorage stores product images and reports where they are served from
type ImageStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageURL returns image unchanged when it is already absolute, otherwise
// joins it onto baseURL.
func ImageURL(image, baseURL string) string {
	if image == "" || baseURL == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(baseURL, "/") + "/" + path.Clean(strings.TrimLeft(image, "/"))
}
