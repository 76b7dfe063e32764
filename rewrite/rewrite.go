package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

const unavailableNote = " (AI Enhancement unavailable - missing API Key)"

// Service rewrites a caption through a generateContent-style endpoint. It is
// optional: without a key the caller gets the original text back.
type Service struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewFromEnv() *Service {
	model := os.Getenv("REWRITE_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	endpoint := os.Getenv("REWRITE_ENDPOINT")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model)
	}
	return &Service{
		apiKey:   os.Getenv("REWRITE_API_KEY"),
		endpoint: endpoint,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Enhance returns the improved caption and whether the rewrite happened.
// Never an error: an unconfigured key appends an explicit unavailability
// note, a transport or parse failure returns the text unchanged.
func (s *Service) Enhance(ctx context.Context, text string) (string, bool) {
	if s.apiKey == "" {
		return text + unavailableNote, false
	}

	prompt := fmt.Sprintf("You are a helpful editor. Improve the following text for a personal social media post. "+
		"Fix grammar, make it slightly more engaging, but keep the original meaning and tone. Keep it concise.\n\n"+
		"Original Text: %q", text)

	reqBody := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return text, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?key="+s.apiKey, bytes.NewReader(payload))
	if err != nil {
		return text, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("rewrite request failed: %v", err)
		return text, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("rewrite returned status %d", resp.StatusCode)
		return text, false
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return text, false
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return text, false
	}
	improved := out.Candidates[0].Content.Parts[0].Text
	if improved == "" {
		return text, false
	}
	return improved, true
}
