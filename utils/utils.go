package utils

import (
	rndm "math/rand"
	"path/filepath"
	"regexp"
	"strings"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

var filenameRe = regexp.MustCompile(`[^\w.\-]`)

// SanitizeFilename strips path components and anything outside [\w.-].
func SanitizeFilename(name string) string {
	clean := filenameRe.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" {
		return "file"
	}
	return clean
}

// DisplayNameFromEmail derives a default display name from the local part of
// an email address.
func DisplayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email == "" {
		return "User"
	}
	return email
}
