package compose

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mywall/models"
)

// fakePreviewer tracks handle lifecycle so tests can assert previews are
// revoked exactly when their draft leaves the collector.
type fakePreviewer struct {
	mu       sync.Mutex
	next     int
	failOn   string
	live     map[string]bool
	released []string
}

func newFakePreviewer() *fakePreviewer {
	return &fakePreviewer{live: make(map[string]bool)}
}

func (p *fakePreviewer) Create(name string, data []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name == p.failOn {
		return "", fmt.Errorf("disk full")
	}
	p.next++
	h := fmt.Sprintf("h%d", p.next)
	p.live[h] = true
	return h, nil
}

func (p *fakePreviewer) Release(handle string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, handle)
	p.released = append(p.released, handle)
}

func (p *fakePreviewer) liveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (p *fakePreviewer) URL(handle string) string {
	return "/static/previews/" + handle
}

func candidate(name, mime string, size int) Candidate {
	return Candidate{Name: name, MIME: mime, Data: make([]byte, size)}
}

func TestCollectorAcceptsAndClassifies(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)

	res := c.Add([]Candidate{
		candidate("a.jpg", "image/jpeg", 10),
		candidate("b.mp4", "video/mp4", 10),
	})

	require.Len(t, res.Accepted, 2)
	assert.Empty(t, res.Rejected)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, models.KindImage, c.Drafts()[0].Kind)
	assert.Equal(t, models.KindVideo, c.Drafts()[1].Kind)
	assert.Equal(t, models.KindImage, c.Primary())
	assert.Equal(t, "", res.Message())
}

func TestCollectorRejectsOversizedIndividually(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)

	res := c.Add([]Candidate{
		candidate("big.bin", "application/octet-stream", MaxFileSize+1),
		candidate("ok.png", "image/png", 10),
	})

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, []string{"big.bin"}, res.Rejected)
	assert.Equal(t, 1, c.Len())
	assert.Contains(t, res.Message(), "big.bin")
	assert.Contains(t, res.Message(), "100 MB")
}

func TestCollectorTruncatesToCapacity(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)

	var batch []Candidate
	for i := 0; i < 9; i++ {
		batch = append(batch, candidate(fmt.Sprintf("f%d.jpg", i), "image/jpeg", 10))
	}
	res := c.Add(batch)

	assert.Len(t, res.Accepted, MaxAttachments)
	assert.Equal(t, []string{"f7.jpg", "f8.jpg"}, res.Dropped)
	assert.Equal(t, MaxAttachments, c.Len())

	// collector is full now; everything else is dropped
	res = c.Add([]Candidate{candidate("late.jpg", "image/jpeg", 10)})
	assert.Empty(t, res.Accepted)
	assert.Equal(t, []string{"late.jpg"}, res.Dropped)
}

func TestCollectorPrimaryKindLifecycle(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)
	assert.Equal(t, models.KindText, c.Primary())

	c.Add([]Candidate{candidate("a.mp3", "audio/mpeg", 10)})
	assert.Equal(t, models.KindAudio, c.Primary())

	// primary stays with the first accepted file
	c.Add([]Candidate{candidate("b.jpg", "image/jpeg", 10)})
	assert.Equal(t, models.KindAudio, c.Primary())

	require.NoError(t, c.RemoveAt(0))
	assert.Equal(t, models.KindAudio, c.Primary())

	require.NoError(t, c.RemoveAt(0))
	assert.Equal(t, models.KindText, c.Primary())
}

func TestCollectorReleasesPreviews(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)

	c.Add([]Candidate{
		candidate("a.jpg", "image/jpeg", 10),
		candidate("b.jpg", "image/jpeg", 10),
		candidate("c.jpg", "image/jpeg", 10),
	})
	require.Equal(t, 3, len(p.live))

	require.NoError(t, c.RemoveAt(1))
	assert.Equal(t, 2, len(p.live))
	assert.Equal(t, []string{"h2"}, p.released)

	// remaining drafts keep their order
	assert.Equal(t, "a.jpg", c.Drafts()[0].Name)
	assert.Equal(t, "c.jpg", c.Drafts()[1].Name)

	c.Clear()
	assert.Empty(t, p.live)
	assert.Equal(t, 0, c.Len())
}

func TestCollectorRemoveAtOutOfRange(t *testing.T) {
	c := NewCollector(newFakePreviewer())
	assert.Error(t, c.RemoveAt(0))
	assert.Error(t, c.RemoveAt(-1))
}

func TestCollectorPreviewFailureIsNotASizeRejection(t *testing.T) {
	p := newFakePreviewer()
	p.failOn = "cursed.jpg"
	c := NewCollector(p)

	res := c.Add([]Candidate{
		candidate("cursed.jpg", "image/jpeg", 10),
		candidate("fine.jpg", "image/jpeg", 10),
	})

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, []string{"cursed.jpg"}, res.Failed)
	assert.Empty(t, res.Rejected)
	assert.Contains(t, res.Message(), "preview failed: cursed.jpg")
	assert.NotContains(t, res.Message(), "too large")
}

// Parallel requests can resolve the same draft and mutate its collector at
// once; the attachment cap and preview bookkeeping must hold regardless.
func TestCollectorConcurrentAdd(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Add([]Candidate{
				candidate(fmt.Sprintf("w%d-a.jpg", n), "image/jpeg", 10),
				candidate(fmt.Sprintf("w%d-b.jpg", n), "image/jpeg", 10),
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, MaxAttachments, c.Len())
	assert.Equal(t, MaxAttachments, p.liveCount())
	assert.NotEqual(t, models.KindText, c.Primary())
}

func TestCollectorConcurrentAddAndRemove(t *testing.T) {
	p := newFakePreviewer()
	c := NewCollector(p)
	c.Add([]Candidate{candidate("seed.jpg", "image/jpeg", 10)})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Add([]Candidate{candidate(fmt.Sprintf("x%d.jpg", n), "image/jpeg", 10)})
			_ = c.RemoveAt(0)
		}(i)
	}
	wg.Wait()

	// every accepted draft is either still held or had its preview released
	assert.Equal(t, c.Len(), p.liveCount())
	assert.LessOrEqual(t, c.Len(), MaxAttachments)
}
