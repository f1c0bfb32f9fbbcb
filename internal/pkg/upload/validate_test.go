package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEBookBySniff(t *testing.T) {
	mime, err := ValidateEBookBySniff("gita.pdf", []byte("%PDF-1.7 rest"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)

	mime, err = ValidateEBookBySniff("gita.epub", []byte("PK\x03\x04rest"))
	require.NoError(t, err)
	assert.Equal(t, "application/epub+zip", mime)

	_, err = ValidateEBookBySniff("gita.exe", []byte("MZ"))
	assert.Error(t, err)

	_, err = ValidateEBookBySniff("gita.pdf", []byte("<html>"))
	assert.Error(t, err)

	_, err = ValidateEBookBySniff("gita.epub", []byte("%PDF-"))
	assert.Error(t, err)
}

func TestValidateCoverBySniff(t *testing.T) {
	// Minimal PNG header is enough for content sniffing.
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	mime, err := ValidateCoverBySniff("cover.png", png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateCoverBySniff("cover.svg", []byte("<svg/>"))
	assert.Error(t, err)

	_, err = ValidateCoverBySniff("cover.png", []byte("<html><body>"))
	assert.Error(t, err)
}
