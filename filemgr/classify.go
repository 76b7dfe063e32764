package filemgr

import (
	"strings"

	"mywall/models"
)

var documentMarkers = []string{"pdf", "msword", "officedocument", "zip", "csv"}

// KindFromMIME maps a declared MIME string to a media kind. Every input maps
// to exactly one kind; anything unrecognized is other.
func KindFromMIME(mimeType string) models.MediaKind {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(m, "image/"):
		return models.KindImage
	case strings.HasPrefix(m, "video/"):
		return models.KindVideo
	case strings.HasPrefix(m, "audio/"):
		return models.KindAudio
	}
	for _, marker := range documentMarkers {
		if strings.Contains(m, marker) {
			return models.KindDocument
		}
	}
	if strings.HasPrefix(m, "text/") {
		return models.KindDocument
	}
	return models.KindOther
}
