package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURL_NormalizesAddress(t *testing.T) {
	messy := GetGravatarURL("  User@Example.COM ", 80)
	clean := GetGravatarURL("user@example.com", 80)
	assert.Equal(t, clean, messy)

	assert.True(t, strings.HasPrefix(messy, "https://www.gravatar.com/avatar/"))
	assert.Contains(t, messy, "s=80")
	assert.Contains(t, messy, "d=mp")
}

func TestGetGravatarURL_DefaultSize(t *testing.T) {
	url := GetGravatarURL("user@example.com", 0)
	assert.Contains(t, url, "s=200")

	url = GetGravatarURL("user@example.com", -5)
	assert.Contains(t, url, "s=200")
}
