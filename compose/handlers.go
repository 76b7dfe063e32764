package compose

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"mywall/globals"
	"mywall/models"
	"mywall/utils"

	"github.com/julienschmidt/httprouter"
)

// ErrEmptyPost rejects a submission with no caption and no attachments.
var ErrEmptyPost = errors.New("post needs a caption or at least one attachment")

// Submitter turns a finished draft into a persisted post.
type Submitter interface {
	CreatePost(ctx context.Context, userID, content string, drafts []*AttachmentDraft, aiEnhanced bool) (*models.Post, error)
}

type Handlers struct {
	store  *Store
	submit Submitter
}

func NewHandlers(store *Store, submit Submitter) *Handlers {
	return &Handlers{store: store, submit: submit}
}

func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}
	d := h.store.Create(userID)
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"draftId": d.ID,
	})
}

func (h *Handlers) draftFromRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) *Draft {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return nil
	}
	d, ok := h.store.Get(ps.ByName("draftid"), userID)
	if !ok {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return nil
	}
	return d
}

// AddFiles accepts a multipart batch under the "files" key.
func (h *Handlers) AddFiles(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d := h.draftFromRequest(w, r, ps)
	if d == nil {
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "Unable to parse form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	var batch []Candidate
	for _, hdr := range files {
		f, err := hdr.Open()
		if err != nil {
			http.Error(w, "Failed to read "+hdr.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read "+hdr.Filename, http.StatusBadRequest)
			return
		}
		batch = append(batch, Candidate{
			Name: utils.SanitizeFilename(hdr.Filename),
			MIME: hdr.Header.Get("Content-Type"),
			Data: data,
		})
	}

	res := d.Collector.Add(batch)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"accepted": res.Accepted,
		"rejected": res.Rejected,
		"dropped":  res.Dropped,
		"message":  res.Message(),
		"count":    d.Collector.Len(),
		"primary":  d.Collector.Primary(),
	})
}

func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d := h.draftFromRequest(w, r, ps)
	if d == nil {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"draftId":     d.ID,
		"attachments": d.Collector.Drafts(),
		"count":       d.Collector.Len(),
		"primary":     d.Collector.Primary(),
	})
}

func (h *Handlers) RemoveFile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d := h.draftFromRequest(w, r, ps)
	if d == nil {
		return
	}
	idx, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}
	if err := d.Collector.RemoveAt(idx); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"count":   d.Collector.Len(),
		"primary": d.Collector.Primary(),
	})
}

// DiscardDraft drops the draft and revokes its previews. Uploads already in
// flight for a concurrent submit are not chased down.
func (h *Handlers) DiscardDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}
	if !h.store.Discard(ps.ByName("draftid"), userID) {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) SubmitDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d := h.draftFromRequest(w, r, ps)
	if d == nil {
		return
	}

	var input struct {
		Content    string `json:"content"`
		AIEnhanced bool   `json:"aiEnhanced"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	post, err := h.submit.CreatePost(r.Context(), d.UserID, input.Content, d.Collector.Drafts(), input.AIEnhanced)
	if err != nil {
		if errors.Is(err, ErrEmptyPost) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.store.Forget(d.ID)
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"data": post,
	})
}
