package wall

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mywall/compose"
	"mywall/filemgr"
	"mywall/mediahost"
	"mywall/models"
	"mywall/mq"
)

// PostStore persists post records. The store assigns identifiers.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Post, error)
	Delete(ctx context.Context, postID string) error
}

// UploadError names the file whose upload or preparation failed.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Assembler turns a caption plus prepared attachments into one persisted
// post. Either everything is uploaded and the record written, or nothing is.
type Assembler struct {
	store PostStore
	host  mediahost.Host
}

func NewAssembler(store PostStore, host mediahost.Host) *Assembler {
	return &Assembler{store: store, host: host}
}

// CreatePost uploads the drafts in selection order and writes one post
// record. The first upload failure aborts the whole submission; no partial
// post is left behind.
func (a *Assembler) CreatePost(ctx context.Context, userID, content string, drafts []*compose.AttachmentDraft, aiEnhanced bool) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(drafts) == 0 {
		return nil, compose.ErrEmptyPost
	}

	var files []models.MediaFile
	for _, d := range drafts {
		data, contentType, err := filemgr.PrepareUpload(d.Kind, d.Name, d.MIME, d.Data)
		if err != nil {
			return nil, &UploadError{FileName: d.Name, Err: err}
		}
		up, err := a.host.Upload(ctx, "wall", d.Name, contentType, data)
		if err != nil {
			return nil, &UploadError{FileName: d.Name, Err: err}
		}
		files = append(files, models.MediaFile{
			URL:         up.URL,
			Kind:        d.Kind,
			FileName:    d.Name,
			Size:        d.Size,
			DeleteToken: up.DeleteToken,
		})
	}

	primary := models.KindText
	if len(files) > 0 {
		primary = files[0].Kind
	}

	post := &models.Post{
		UserID:     userID,
		Content:    content,
		MediaType:  primary,
		MediaFiles: files,
		CreatedAt:  time.Now().UnixMilli(),
		AIEnhanced: aiEnhanced,
	}
	post.Normalize()

	if err := a.store.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("store post: %w", err)
	}

	go mq.Emit(context.Background(), mq.PostEvent{
		Event:  "post-created",
		PostID: post.PostID,
		UserID: userID,
	})

	return post, nil
}
