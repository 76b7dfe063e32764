package models

// MediaKind is the closed category of an attachment's content.
type MediaKind string

const (
	KindText     MediaKind = "text"
	KindImage    MediaKind = "image"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindDocument MediaKind = "document"
	KindOther    MediaKind = "other"
)

// MediaFile is one uploaded attachment owned by a post. DeleteToken is the
// opaque deletion handle issued by the media host and never leaves the server.
type MediaFile struct {
	URL         string    `json:"url" bson:"url"`
	Kind        MediaKind `json:"kind" bson:"kind"`
	FileName    string    `json:"fileName" bson:"fileName"`
	Size        int64     `json:"size" bson:"size"`
	DeleteToken string    `json:"-" bson:"deleteToken,omitempty"`
}
