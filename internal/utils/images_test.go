package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64ImageDataURL(t *testing.T) {
	data, contentType, ext, err := DecodeBase64Image("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "png", ext)
}

func TestDecodeBase64ImageRawPayload(t *testing.T) {
	data, contentType, ext, err := DecodeBase64Image("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "jpg", ext)
}

func TestDecodeBase64ImageInvalid(t *testing.T) {
	_, _, _, err := DecodeBase64Image("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrInvalidImagePayload)

	_, _, _, err = DecodeBase64Image("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidImagePayload)
}
