package astria

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	// ModelTypeLora is the reserved model_type marker a tune must carry to
	// be usable as a prompt adapter.
	ModelTypeLora = "lora"

	// BranchFlux tags the model family lora adapters are locked to.
	BranchFlux = "flux1"
)

// Tune is the read-only projection of a fine-tuned model adapter. The
// service owns its lifecycle; this SDK only fetches it.
type Tune struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Name              string     `json:"name"`
	ModelType         *string    `json:"model_type"`
	TrainedAt         *time.Time `json:"trained_at"`
	StartedTrainingAt *time.Time `json:"started_training_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	Token             *string    `json:"token"`
	Branch            *string    `json:"branch"`
	BaseTuneID        *int64     `json:"base_tune_id"`
}

// Trained reports whether training has finished.
func (t *Tune) Trained() bool {
	return t != nil && t.TrainedAt != nil
}

// IsLora reports whether the tune carries the lora adapter marker.
func (t *Tune) IsLora() bool {
	return t != nil && t.ModelType != nil && *t.ModelType == ModelTypeLora
}

// TriggerToken returns the trigger word prompts must contain, or "" when the
// tune does not require one.
func (t *Tune) TriggerToken() string {
	if t == nil || t.Token == nil {
		return ""
	}
	return strings.TrimSpace(*t.Token)
}

// TuneImage is an inline training image for CreateTune.
type TuneImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateTuneParams captures the inputs for a new fine-tune submission.
// Training images are supplied either as URLs or inline bytes.
type CreateTuneParams struct {
	Title       string
	Name        string
	Preset      string
	Branch      string
	CallbackURL string
	ImageURLs   []string
	Images      []TuneImage
}

// CreateTune submits a new fine-tune as a nested tune[...] multipart form.
func (c *Client) CreateTune(ctx context.Context, params CreateTuneParams) (*Tune, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, errors.New("astria: tune title is required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.New("astria: tune name is required")
	}
	if len(params.ImageURLs) == 0 && len(params.Images) == 0 {
		return nil, errors.New("astria: at least one training image is required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := []struct{ key, value string }{
		{"tune[title]", title},
		{"tune[name]", name},
		{"tune[preset]", strings.TrimSpace(params.Preset)},
		{"tune[branch]", strings.TrimSpace(params.Branch)},
		{"tune[callback]", strings.TrimSpace(params.CallbackURL)},
	}
	for _, field := range fields {
		if field.value == "" && field.key != "tune[title]" && field.key != "tune[name]" {
			continue
		}
		if err := form.WriteField(field.key, field.value); err != nil {
			return nil, fmt.Errorf("astria: encode tune form: %w", err)
		}
	}
	for _, u := range params.ImageURLs {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		if err := form.WriteField("tune[image_urls][]", u); err != nil {
			return nil, fmt.Errorf("astria: encode tune form: %w", err)
		}
	}
	for _, img := range params.Images {
		part, err := imagePart(form, img)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("astria: write tune image: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("astria: finish tune form: %w", err)
	}

	raw, err := c.request(ctx, http.MethodPost, "tunes", form.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	return decodeTune(raw)
}

// ListTunes returns the caller's tunes, ordered by the service, starting at
// the given offset.
func (c *Client) ListTunes(ctx context.Context, offset int) ([]Tune, error) {
	path := "tunes"
	if offset > 0 {
		path = fmt.Sprintf("tunes?offset=%d", offset)
	}
	raw, err := c.request(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var tunes []Tune
	if err := json.Unmarshal(raw, &tunes); err != nil {
		return nil, fmt.Errorf("astria: decode tune list: %w", err)
	}
	return tunes, nil
}

// RetrieveTune fetches a single tune by id. The record is always fetched
// fresh; nothing is cached across calls.
func (c *Client) RetrieveTune(ctx context.Context, id int64) (*Tune, error) {
	raw, err := c.request(ctx, http.MethodGet, fmt.Sprintf("tunes/%d", id), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeTune(raw)
}

func decodeTune(raw []byte) (*Tune, error) {
	var tune Tune
	if err := json.Unmarshal(raw, &tune); err != nil {
		return nil, fmt.Errorf("astria: decode tune: %w", err)
	}
	return &tune, nil
}

func imagePart(form *multipart.Writer, img TuneImage) (io.Writer, error) {
	filename := strings.TrimSpace(img.Filename)
	if filename == "" {
		return nil, errors.New("astria: tune image filename is required")
	}
	contentType := strings.TrimSpace(img.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="tune[images][]"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("astria: create tune image part: %w", err)
	}
	return part, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
