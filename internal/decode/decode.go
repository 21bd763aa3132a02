/**
 * Image Decoder for the CAPTCHA Solver Worker
 *
 * Turns an externally supplied encoded image (raw bytes, plain base64, or a
 * data-URL of the form "data:<mime>;base64,<payload>") into an in-memory
 * raster image.
 */

package decode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Bytes decodes raw image bytes into a raster image.
// Returns the decoded image and the detected format name.
func Bytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}

	format := DetectFormat(data)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		if format == "" {
			return nil, "", fmt.Errorf("unrecognized image format: %w", err)
		}
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	return img, format, nil
}

// String decodes a base64 or data-URL encoded image.
// A data-URL prefix is stripped up to and including the first comma, the
// remainder is treated as base64.
func String(payload string) (image.Image, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", fmt.Errorf("empty image payload")
	}

	// Handle data URL format (e.g., "data:image/png;base64,...")
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients send base64 without padding
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}

	return Bytes(data)
}

// DetectFormat detects the image format from file content magic bytes.
// Returns "" when the payload does not start with a known image signature.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	// PNG: 0x89 'P' 'N' 'G' 0x0D 0x0A 0x1A 0x0A
	if len(data) >= 8 && bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return "png"
	}

	// JPEG: 0xFF 0xD8 0xFF
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "jpeg"
	}

	// GIF: 'G' 'I' 'F' '8' ('7' or '9') 'a'
	if bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")) {
		return "gif"
	}

	// TIFF: 'I' 'I' 0x2A 0x00 (little-endian) or 'M' 'M' 0x00 0x2A (big-endian)
	if bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A}) {
		return "tiff"
	}

	// BMP: 'B' 'M'
	if bytes.HasPrefix(data, []byte("BM")) {
		return "bmp"
	}

	return ""
}
