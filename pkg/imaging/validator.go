package imaging

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"go-profile-backend/pkg/apperror"

	"golang.org/x/image/webp"
)

// MaxAvatarBytes caps avatar uploads at 2 MiB.
const MaxAvatarBytes = 2 << 20

// Allowed avatar content types (strict whitelist).
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Magic byte prefixes per content type. WebP shares the RIFF container
// header, so the WEBP fourcc at offset 8 is checked separately.
var magicBytes = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/webp": {{0x52, 0x49, 0x46, 0x46}},
}

// ValidateAvatar performs 4-layer validation before any network operation:
// 1. content-type whitelist
// 2. size cap
// 3. magic byte verification (content matches declared type)
// 4. decode of the image header
func ValidateAvatar(data []byte, contentType string) error {
	if !allowedContentTypes[contentType] {
		return apperror.InvalidImage("Avatar must be a JPEG, PNG, or WebP image")
	}
	if len(data) > MaxAvatarBytes {
		return apperror.InvalidImage(fmt.Sprintf("Avatar must be under %dMB", MaxAvatarBytes/(1<<20)))
	}
	if len(data) < 12 {
		return apperror.InvalidImage("File is too small to be an image")
	}
	if !matchesMagicBytes(data, contentType) {
		return apperror.InvalidImage("File content does not match its declared image type")
	}
	if err := decodeHeader(data, contentType); err != nil {
		return apperror.InvalidImage("File is not a decodable image")
	}
	return nil
}

func matchesMagicBytes(data []byte, contentType string) bool {
	for _, sig := range magicBytes[contentType] {
		if bytes.HasPrefix(data, sig) {
			if contentType == "image/webp" {
				return len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP"))
			}
			return true
		}
	}
	return false
}

func decodeHeader(data []byte, contentType string) error {
	r := bytes.NewReader(data)
	var err error
	switch contentType {
	case "image/jpeg":
		_, err = jpeg.DecodeConfig(r)
	case "image/png":
		_, err = png.DecodeConfig(r)
	case "image/webp":
		_, err = webp.DecodeConfig(r)
	}
	return err
}
