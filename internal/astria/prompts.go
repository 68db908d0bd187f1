package astria

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Prompt is the read-only projection of one generation job. While the job is
// processing, Images is empty and Error is nil; the service fills exactly one
// of them when the job leaves that state. Status is free-form and not
// reliably populated, so terminal-state detection keys on Images and Error.
type Prompt struct {
	ID        int64      `json:"id"`
	TuneID    int64      `json:"tune_id"`
	Text      string     `json:"text"`
	Images    []string   `json:"images"`
	Error     *string    `json:"error"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at"`
}

// Completed reports whether the job produced artifacts.
func (p *Prompt) Completed() bool {
	return p != nil && len(p.Images) > 0
}

// Failed reports whether the service recorded an explicit failure.
func (p *Prompt) Failed() bool {
	return p != nil && p.Error != nil && strings.TrimSpace(*p.Error) != ""
}

// FailureMessage returns the recorded failure text, or "" when none exists.
func (p *Prompt) FailureMessage() string {
	if !p.Failed() {
		return ""
	}
	return strings.TrimSpace(*p.Error)
}

// PromptParams captures the inputs for one generation job. Text carries the
// final composed prompt, trigger tokens and adapter tags included.
type PromptParams struct {
	Text            string
	NegativePrompt  string
	Width           int
	Height          int
	NumImages       int
	CFGScale        float64
	Seed            *int64
	SuperResolution bool
	InpaintFaces    bool
}

func (p PromptParams) form() url.Values {
	values := url.Values{}
	values.Set("prompt[text]", p.Text)
	if neg := strings.TrimSpace(p.NegativePrompt); neg != "" {
		values.Set("prompt[negative_prompt]", neg)
	}
	if p.Width > 0 {
		values.Set("prompt[w]", strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		values.Set("prompt[h]", strconv.Itoa(p.Height))
	}
	if p.NumImages > 0 {
		values.Set("prompt[num_images]", strconv.Itoa(p.NumImages))
	}
	if p.CFGScale > 0 {
		values.Set("prompt[cfg_scale]", strconv.FormatFloat(p.CFGScale, 'f', -1, 64))
	}
	if p.Seed != nil {
		values.Set("prompt[seed]", strconv.FormatInt(*p.Seed, 10))
	}
	if p.SuperResolution {
		values.Set("prompt[super_resolution]", "true")
	}
	if p.InpaintFaces {
		values.Set("prompt[inpaint_faces]", "true")
	}
	return values
}

// CreatePrompt submits a generation job under the base tune that selects the
// model. The returned prompt may already be terminal.
func (c *Client) CreatePrompt(ctx context.Context, tuneID int64, params PromptParams) (*Prompt, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, errors.New("astria: prompt text is required")
	}
	path := fmt.Sprintf("tunes/%d/prompts", tuneID)
	body := strings.NewReader(params.form().Encode())
	raw, err := c.request(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", body)
	if err != nil {
		return nil, err
	}
	return decodePrompt(raw)
}

// RetrievePrompt fetches the current projection of a generation job.
func (c *Client) RetrievePrompt(ctx context.Context, tuneID, promptID int64) (*Prompt, error) {
	path := fmt.Sprintf("tunes/%d/prompts/%d", tuneID, promptID)
	raw, err := c.request(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	return decodePrompt(raw)
}

func decodePrompt(raw []byte) (*Prompt, error) {
	var prompt Prompt
	if err := json.Unmarshal(raw, &prompt); err != nil {
		return nil, fmt.Errorf("astria: decode prompt: %w", err)
	}
	return &prompt, nil
}
