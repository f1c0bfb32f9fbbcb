package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GetGravatarURL builds the avatar URL for an email address. Gravatar hashes
// the lowercased, trimmed address, so the same mailbox always maps to the
// same image regardless of how the user typed it. Unknown addresses fall back
// to the "mystery person" placeholder (d=mp). A non-positive size defaults
// to 200px.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), size)
}
