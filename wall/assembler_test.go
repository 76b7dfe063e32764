package wall

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywall/compose"
	"mywall/db"
	"mywall/mediahost"
	"mywall/models"
)

type fakeStore struct {
	created []*models.Post
	posts   map[string]*models.Post
	deleted []string
	next    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: make(map[string]*models.Post)}
}

func (s *fakeStore) Create(ctx context.Context, post *models.Post) error {
	s.next++
	post.PostID = fmt.Sprintf("p%012d", s.next)
	s.created = append(s.created, post)
	s.posts[post.PostID] = post
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	post, ok := s.posts[postID]
	if !ok {
		return nil, db.ErrPostNotFound
	}
	return post, nil
}

func (s *fakeStore) ListByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	var out []models.Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) Delete(ctx context.Context, postID string) error {
	if _, ok := s.posts[postID]; !ok {
		return db.ErrPostNotFound
	}
	delete(s.posts, postID)
	s.deleted = append(s.deleted, postID)
	return nil
}

type fakeHost struct {
	uploads   []string // file names in upload order
	deleted   []string // delete tokens
	failAfter int      // fail the upload at this 1-based position, 0 = never
	failToken string   // Delete returns false for this token
	next      int
}

func (h *fakeHost) Upload(ctx context.Context, folder, name, contentType string, data []byte) (*mediahost.Uploaded, error) {
	h.next++
	if h.failAfter > 0 && h.next >= h.failAfter {
		return nil, errors.New("host unavailable")
	}
	h.uploads = append(h.uploads, name)
	return &mediahost.Uploaded{
		URL:         fmt.Sprintf("https://cdn.example/%s/%s", folder, name),
		DeleteToken: fmt.Sprintf("tok-%s", name),
	}, nil
}

func (h *fakeHost) Delete(ctx context.Context, token string) bool {
	h.deleted = append(h.deleted, token)
	return token != h.failToken
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func draft(name, mime string, kind models.MediaKind, data []byte) *compose.AttachmentDraft {
	return &compose.AttachmentDraft{
		Name: name,
		Size: int64(len(data)),
		MIME: mime,
		Kind: kind,
		Data: data,
	}
}

func TestCreatePostRejectsEmptySubmission(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{}
	asm := NewAssembler(store, host)

	_, err := asm.CreatePost(context.Background(), "u1", "   ", nil, false)
	require.ErrorIs(t, err, compose.ErrEmptyPost)

	// rejected before any network work
	assert.Empty(t, host.uploads)
	assert.Empty(t, store.created)
}

func TestCreatePostCaptionOnly(t *testing.T) {
	store := newFakeStore()
	asm := NewAssembler(store, &fakeHost{})

	post, err := asm.CreatePost(context.Background(), "u1", "hello wall", nil, false)
	require.NoError(t, err)

	assert.NotEmpty(t, post.PostID)
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, models.KindText, post.MediaType)
	assert.Empty(t, post.MediaFiles)
	assert.Greater(t, post.CreatedAt, int64(0))
}

func TestCreatePostPreservesAttachmentOrder(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{}
	asm := NewAssembler(store, host)

	drafts := []*compose.AttachmentDraft{
		draft("clip.mp4", "video/mp4", models.KindVideo, []byte("vvvv")),
		draft("notes.pdf", "application/pdf", models.KindDocument, []byte("pppp")),
		draft("song.mp3", "audio/mpeg", models.KindAudio, []byte("aaaa")),
	}

	post, err := asm.CreatePost(context.Background(), "u1", "with media", drafts, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"clip.mp4", "notes.pdf", "song.mp3"}, host.uploads)
	require.Len(t, post.MediaFiles, 3)
	assert.Equal(t, "clip.mp4", post.MediaFiles[0].FileName)
	assert.Equal(t, "notes.pdf", post.MediaFiles[1].FileName)
	assert.Equal(t, "song.mp3", post.MediaFiles[2].FileName)

	// primary kind comes from the first attachment
	assert.Equal(t, models.KindVideo, post.MediaType)

	// each entry keeps its deletion handle for later cleanup
	assert.Equal(t, "tok-clip.mp4", post.MediaFiles[0].DeleteToken)
}

func TestCreatePostCompressesImages(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{}
	asm := NewAssembler(store, host)

	drafts := []*compose.AttachmentDraft{
		draft("pic.png", "image/png", models.KindImage, pngBytes(t)),
	}

	post, err := asm.CreatePost(context.Background(), "u1", "", drafts, false)
	require.NoError(t, err)
	assert.Equal(t, models.KindImage, post.MediaType)
	assert.Equal(t, "pic.png", post.MediaFiles[0].FileName)
}

func TestCreatePostAbortsOnUploadFailure(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{failAfter: 2}
	asm := NewAssembler(store, host)

	drafts := []*compose.AttachmentDraft{
		draft("ok.mp4", "video/mp4", models.KindVideo, []byte("v")),
		draft("bad.pdf", "application/pdf", models.KindDocument, []byte("p")),
		draft("never.mp3", "audio/mpeg", models.KindAudio, []byte("a")),
	}

	_, err := asm.CreatePost(context.Background(), "u1", "doomed", drafts, false)
	require.Error(t, err)

	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "bad.pdf", ue.FileName)
	assert.Contains(t, err.Error(), "bad.pdf")

	// nothing persisted, later files never attempted
	assert.Empty(t, store.created)
	assert.Equal(t, []string{"ok.mp4"}, host.uploads)
}

func TestCreatePostNamesUndecodableImage(t *testing.T) {
	store := newFakeStore()
	host := &fakeHost{}
	asm := NewAssembler(store, host)

	drafts := []*compose.AttachmentDraft{
		draft("corrupt.png", "image/png", models.KindImage, []byte("garbage")),
	}

	_, err := asm.CreatePost(context.Background(), "u1", "", drafts, false)
	require.Error(t, err)

	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "corrupt.png", ue.FileName)
	assert.Empty(t, host.uploads)
	assert.Empty(t, store.created)
}
