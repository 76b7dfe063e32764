package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeFilename("photo.jpg"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "my_holiday_pic_.png", SanitizeFilename("my holiday pic!.png"))
	assert.Equal(t, "file", SanitizeFilename(""))
}

func TestDisplayNameFromEmail(t *testing.T) {
	assert.Equal(t, "alex", DisplayNameFromEmail("alex@example.com"))
	assert.Equal(t, "User", DisplayNameFromEmail(""))
	assert.Equal(t, "noatsign", DisplayNameFromEmail("noatsign"))
}

func TestGenerateRandomStringLength(t *testing.T) {
	assert.Len(t, GenerateRandomString(12), 12)
	assert.NotEqual(t, GenerateRandomString(12), GenerateRandomString(12))
}
