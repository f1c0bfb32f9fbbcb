package upload

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var allowedEBookExt = map[string]bool{
	".pdf":  true,
	".epub": true,
}

var allowedCoverExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	// Note: SVG is intentionally excluded due to XSS risk without sanitization
}

var allowedCoverMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateEBookBySniff checks the provided filename (extension) and the first
// bytes (head) against the supported ebook formats. Returns the detected mime
// or an error.
func ValidateEBookBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedEBookExt[ext] {
		return "", errors.New("only PDF and EPUB files are supported")
	}

	switch ext {
	case ".pdf":
		if !bytes.HasPrefix(head, []byte("%PDF-")) {
			return "", errors.New("file does not look like a PDF")
		}
		return "application/pdf", nil
	case ".epub":
		// EPUB is a ZIP container; check the local file header magic.
		if !bytes.HasPrefix(head, []byte("PK\x03\x04")) {
			return "", errors.New("file does not look like an EPUB")
		}
		return "application/epub+zip", nil
	}
	return "", errors.New("unsupported file type")
}

// ValidateCoverBySniff checks the provided filename (extension) and the first
// bytes (head) against a whitelist of cover image types. Returns detected
// mime or an error.
func ValidateCoverBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedCoverExt[ext] {
		return "", errors.New("only JPG, PNG and WEBP covers are supported")
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", errors.New("invalid file type: HTML content is not allowed")
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", errors.New("SVG/XML covers are not supported")
	}

	if allowedCoverMime[detected] {
		return detected, nil
	}
	return "", errors.New("unsupported cover image type")
}

// EBookContentType maps a stored file type to the response content type.
func EBookContentType(fileType string) string {
	if fileType == "epub" {
		return "application/epub+zip"
	}
	return "application/pdf"
}
