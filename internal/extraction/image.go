package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// DetectImageType validates that b is a decodable PNG or JPEG and returns its MIME type.
func DetectImageType(b []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("unsupported image: %w", err)
	}
	return "image/" + format, nil
}
