package compose

import (
	"fmt"
	"strings"
	"sync"

	"mywall/filemgr"
	"mywall/models"
)

const (
	// MaxAttachments caps how many files one post may carry.
	MaxAttachments = 7
	// MaxFileSize is the per-file byte cap.
	MaxFileSize = 100 << 20
)

// Previewer hands out revocable preview handles for not-yet-uploaded files.
type Previewer interface {
	Create(name string, data []byte) (string, error)
	Release(handle string)
	URL(handle string) string
}

// Candidate is a freshly selected file before validation.
type Candidate struct {
	Name string
	MIME string
	Data []byte
}

// AttachmentDraft is an accepted file held by a collector until the post is
// submitted or the draft discarded.
type AttachmentDraft struct {
	Name    string           `json:"fileName"`
	Size    int64            `json:"size"`
	MIME    string           `json:"-"`
	Kind    models.MediaKind `json:"kind"`
	Data    []byte           `json:"-"`
	Preview string           `json:"previewUrl"`

	handle string
}

// AddResult reports what happened to one batch of selected files. Rejection
// of one file never blocks acceptance of the others.
type AddResult struct {
	Accepted []*AttachmentDraft
	Rejected []string // over the per-file size cap
	Dropped  []string // over the attachment count cap
	Failed   []string // preview creation failed
}

func (r AddResult) Message() string {
	var parts []string
	if len(r.Rejected) > 0 {
		parts = append(parts, fmt.Sprintf("too large (max 100 MB): %s", strings.Join(r.Rejected, ", ")))
	}
	if len(r.Dropped) > 0 {
		parts = append(parts, fmt.Sprintf("dropped, only %d attachments allowed: %s", MaxAttachments, strings.Join(r.Dropped, ", ")))
	}
	if len(r.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("preview failed: %s", strings.Join(r.Failed, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Collector accumulates the attachments of one post draft in selection
// order. Safe for concurrent use: the same draft can be hit by parallel
// requests and the expiry sweeper.
type Collector struct {
	mu       sync.Mutex
	previews Previewer
	drafts   []*AttachmentDraft
	primary  models.MediaKind
}

func NewCollector(previews Previewer) *Collector {
	return &Collector{previews: previews, primary: models.KindText}
}

// Add validates and accepts a batch of selected files. Oversized files are
// rejected individually; the remainder is truncated to the free capacity.
func (c *Collector) Add(batch []Candidate) AddResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res AddResult
	for _, cand := range batch {
		if int64(len(cand.Data)) > MaxFileSize {
			res.Rejected = append(res.Rejected, cand.Name)
			continue
		}
		if len(c.drafts) >= MaxAttachments {
			res.Dropped = append(res.Dropped, cand.Name)
			continue
		}

		draft := &AttachmentDraft{
			Name: cand.Name,
			Size: int64(len(cand.Data)),
			MIME: cand.MIME,
			Kind: filemgr.KindFromMIME(cand.MIME),
			Data: cand.Data,
		}
		handle, err := c.previews.Create(cand.Name, cand.Data)
		if err != nil {
			res.Failed = append(res.Failed, cand.Name)
			continue
		}
		draft.handle = handle
		draft.Preview = c.previews.URL(handle)

		// The draft's primary kind comes from the first file accepted while
		// the collector is empty; later additions never change it.
		if len(c.drafts) == 0 {
			c.primary = draft.Kind
		}
		c.drafts = append(c.drafts, draft)
		res.Accepted = append(res.Accepted, draft)
	}
	return res
}

// RemoveAt drops the file at the given position and releases its preview.
func (c *Collector) RemoveAt(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.drafts) {
		return fmt.Errorf("no attachment at position %d", i)
	}
	c.release(c.drafts[i])
	c.drafts = append(c.drafts[:i], c.drafts[i+1:]...)
	if len(c.drafts) == 0 {
		c.primary = models.KindText
	}
	return nil
}

// Clear releases every preview and empties the collector.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.drafts {
		c.release(d)
	}
	c.drafts = nil
	c.primary = models.KindText
}

func (c *Collector) release(d *AttachmentDraft) {
	if d.handle != "" {
		c.previews.Release(d.handle)
		d.handle = ""
		d.Preview = ""
	}
}

// Drafts returns a snapshot of the current attachments in order.
func (c *Collector) Drafts() []*AttachmentDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*AttachmentDraft, len(c.drafts))
	copy(out, c.drafts)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.drafts)
}

func (c *Collector) Primary() models.MediaKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primary
}
