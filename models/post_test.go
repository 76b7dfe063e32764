package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLegacyRecord(t *testing.T) {
	p := Post{
		PostID:    "p1",
		UserID:    "u1",
		Content:   "old post",
		MediaType: KindImage,
		MediaURL:  "https://cdn.example/old.jpg",
		FileName:  "old.jpg",
	}
	p.Normalize()

	assert.Len(t, p.MediaFiles, 1)
	assert.Equal(t, "https://cdn.example/old.jpg", p.MediaFiles[0].URL)
	assert.Equal(t, "old.jpg", p.MediaFiles[0].FileName)
	assert.Equal(t, KindImage, p.MediaFiles[0].Kind)
}

func TestNormalizeLegacyRecordWithoutKind(t *testing.T) {
	p := Post{MediaURL: "https://cdn.example/blob"}
	p.Normalize()

	assert.Len(t, p.MediaFiles, 1)
	assert.Equal(t, KindOther, p.MediaFiles[0].Kind)
}

func TestNormalizeTextOnly(t *testing.T) {
	p := Post{Content: "just words"}
	p.Normalize()

	assert.Empty(t, p.MediaFiles)
	assert.Equal(t, KindText, p.MediaType)
	assert.Empty(t, p.MediaURL)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	p := Post{
		MediaType: KindVideo,
		MediaURL:  "https://cdn.example/v.mp4",
		FileName:  "v.mp4",
	}
	p.Normalize()
	p.Normalize()

	assert.Len(t, p.MediaFiles, 1)
	assert.Equal(t, "https://cdn.example/v.mp4", p.MediaURL)
}

func TestNormalizeBackfillsLegacyFields(t *testing.T) {
	p := Post{
		MediaType: KindImage,
		MediaFiles: []MediaFile{
			{URL: "https://cdn.example/a.jpg", Kind: KindImage, FileName: "a.jpg"},
			{URL: "https://cdn.example/b.jpg", Kind: KindImage, FileName: "b.jpg"},
		},
	}
	p.Normalize()

	assert.Equal(t, "https://cdn.example/a.jpg", p.MediaURL)
	assert.Equal(t, "a.jpg", p.FileName)
	assert.Len(t, p.MediaFiles, 2)
}
