package wall

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"mywall/compose"
	"mywall/db"
	"mywall/globals"
	"mywall/mediahost"
	"mywall/models"
	"mywall/mq"
	"mywall/rewrite"
	"mywall/utils"
)

// Handlers serves the wall feed over HTTP.
type Handlers struct {
	store    PostStore
	host     mediahost.Host
	asm      *Assembler
	rewriter *rewrite.Service
}

func NewHandlers(store PostStore, host mediahost.Host, rewriter *rewrite.Service) *Handlers {
	return &Handlers{
		store:    store,
		host:     host,
		asm:      NewAssembler(store, host),
		rewriter: rewriter,
	}
}

func requestUser(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetPosts returns the caller's posts, newest first.
func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	posts, err := h.store.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Printf("list posts for %s: %v", userID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	utils.SendResponse(w, http.StatusOK, posts, "Posts fetched", nil)
}

// GetPost returns a single post owned by the caller.
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, err := h.ownedPost(r.Context(), ps.ByName("postid"), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	utils.SendResponse(w, http.StatusOK, post, "Post fetched", nil)
}

// SharedPost serves a post to whoever follows its permalink, which is what
// the share QR points at. Auth is optional; the owner additionally gets an
// ownership flag.
func (h *Handlers) SharedPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.store.GetByID(r.Context(), ps.ByName("postid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	userID, _ := requestUser(r)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"data": post,
		"own":  userID != "" && userID == post.UserID,
	})
}

func (h *Handlers) ownedPost(ctx context.Context, postID, userID string) (*models.Post, error) {
	post, err := h.store.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, db.ErrPostNotFound
	}
	return post, nil
}

// DeletePost removes a post and its hosted media. Individual media
// deletions are best effort; the record is removed regardless.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	postID := ps.ByName("postid")
	post, err := h.ownedPost(r.Context(), postID, userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	for _, f := range post.MediaFiles {
		if f.DeleteToken == "" {
			continue
		}
		if !h.host.Delete(r.Context(), f.DeleteToken) {
			log.Printf("media delete failed for post %s: %s", postID, f.FileName)
		}
	}

	if err := h.store.Delete(r.Context(), postID); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("delete post %s: %v", postID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	go mq.Emit(context.Background(), mq.PostEvent{
		Event:  "post-deleted",
		PostID: postID,
		UserID: userID,
	})

	utils.SendResponse(w, http.StatusOK, map[string]string{"postid": postID}, "Post deleted", nil)
}

// nopPreviewer skips local preview files for one-shot submissions.
type nopPreviewer struct{}

func (nopPreviewer) Create(string, []byte) (string, error) { return "", nil }
func (nopPreviewer) Release(string)                        {}
func (nopPreviewer) URL(string) string                     { return "" }

// CreatePost accepts a caption and attachments in one multipart request,
// without an intermediate draft.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	content := r.FormValue("content")
	aiEnhanced := r.FormValue("aiEnhanced") == "true"

	collector := compose.NewCollector(nopPreviewer{})
	defer collector.Clear()

	var candidates []compose.Candidate
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			file, err := fh.Open()
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
				return
			}
			candidates = append(candidates, compose.Candidate{
				Name: utils.SanitizeFilename(fh.Filename),
				MIME: fh.Header.Get("Content-Type"),
				Data: data,
			})
		}
	}
	res := collector.Add(candidates)

	post, err := h.asm.CreatePost(r.Context(), userID, content, collector.Drafts(), aiEnhanced)
	if err != nil {
		var ue *UploadError
		switch {
		case errors.Is(err, compose.ErrEmptyPost):
			utils.RespondWithError(w, http.StatusBadRequest, "Post must contain text or media")
		case errors.As(err, &ue):
			utils.RespondWithError(w, http.StatusBadGateway, ue.Error())
		default:
			log.Printf("create post for %s: %v", userID, err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	utils.SendResponse(w, http.StatusCreated, map[string]any{
		"post":    post,
		"message": res.Message(),
	}, "Post created", nil)
}

// RewriteCaption runs the caption text through the AI rewrite service.
func (h *Handlers) RewriteCaption(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := requestUser(r); !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing text")
		return
	}

	text, enhanced := h.rewriter.Enhance(r.Context(), req.Text)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"text":     text,
		"enhanced": enhanced,
	})
}
