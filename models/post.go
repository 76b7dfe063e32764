package models

// Post is a wall entry owned by a single user. CreatedAt is epoch millis so
// the feed sort matches what older clients stored.
type Post struct {
	PostID     string      `json:"id" bson:"postid"`
	UserID     string      `json:"userId" bson:"userid"`
	Content    string      `json:"content" bson:"content"`
	MediaType  MediaKind   `json:"mediaType" bson:"mediaType"`
	MediaFiles []MediaFile `json:"mediaFiles" bson:"mediaFiles,omitempty"`
	CreatedAt  int64       `json:"createdAt" bson:"createdAt"`
	AIEnhanced bool        `json:"aiEnhanced" bson:"aiEnhanced"`

	// Legacy single-attachment shape. Older records carry the first (only)
	// attachment inline instead of a mediaFiles list.
	MediaURL string `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	FileName string `json:"fileName,omitempty" bson:"fileName,omitempty"`
}

// Normalize maps a legacy record onto the current shape: when the mediaFiles
// list is absent but a legacy URL exists, synthesize a one-element list.
// Safe to call repeatedly.
func (p *Post) Normalize() {
	if len(p.MediaFiles) == 0 && p.MediaURL != "" {
		kind := p.MediaType
		if kind == "" || kind == KindText {
			kind = KindOther
		}
		p.MediaFiles = []MediaFile{{
			URL:      p.MediaURL,
			Kind:     kind,
			FileName: p.FileName,
		}}
	}
	if p.MediaType == "" {
		p.MediaType = KindText
	}
	if len(p.MediaFiles) > 0 {
		p.MediaURL = p.MediaFiles[0].URL
		p.FileName = p.MediaFiles[0].FileName
	}
}
