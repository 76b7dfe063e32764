package mediahost

import "context"

// Uploaded is the durable result of one media upload. DeleteToken identifies
// the object for later removal and stays server-side.
type Uploaded struct {
	URL         string
	DeleteToken string
}

// Host is the external media store. Upload failures abort the submission
// that issued them; Delete is best-effort.
type Host interface {
	Upload(ctx context.Context, folder, name, contentType string, data []byte) (*Uploaded, error)
	Delete(ctx context.Context, token string) bool
}
