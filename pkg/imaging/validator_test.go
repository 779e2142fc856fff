package imaging_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/imaging"

	"github.com/stretchr/testify/assert"
)

func encode(t *testing.T, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	}
	assert.NoError(t, err)
	return buf.Bytes()
}

func TestValidateAvatar(t *testing.T) {
	t.Run("Should accept a real PNG", func(t *testing.T) {
		assert.NoError(t, imaging.ValidateAvatar(encode(t, "png"), "image/png"))
	})

	t.Run("Should accept a real JPEG", func(t *testing.T) {
		assert.NoError(t, imaging.ValidateAvatar(encode(t, "jpeg"), "image/jpeg"))
	})

	t.Run("Should reject disallowed content types", func(t *testing.T) {
		err := imaging.ValidateAvatar(encode(t, "png"), "image/gif")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
	})

	t.Run("Should reject oversized payloads", func(t *testing.T) {
		err := imaging.ValidateAvatar(make([]byte, imaging.MaxAvatarBytes+1), "image/png")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
	})

	t.Run("Should reject content that does not match the declared type", func(t *testing.T) {
		// Real PNG bytes declared as JPEG
		err := imaging.ValidateAvatar(encode(t, "png"), "image/jpeg")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
		assert.Contains(t, err.Error(), "does not match")
	})

	t.Run("Should reject a forged header that fails to decode", func(t *testing.T) {
		forged := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 32)...)
		err := imaging.ValidateAvatar(forged, "image/png")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
	})

	t.Run("Should reject tiny non-image payloads", func(t *testing.T) {
		err := imaging.ValidateAvatar([]byte{0xFF, 0xD8}, "image/jpeg")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidImage))
	})
}
