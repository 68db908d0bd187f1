package astria

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"
)

func TestRetrieveTuneNotFound(t *testing.T) {
	transport := newStubTransport()
	client := newTestClient(t, transport)

	_, err := client.RetrieveTune(context.Background(), 999)
	if err == nil {
		t.Fatalf("expected error")
	}
	if classified := Classify(err); classified.Kind != KindNotFound {
		t.Fatalf("Kind = %s, want NOT_FOUND", classified.Kind)
	}
}

func TestListTunesOffset(t *testing.T) {
	transport := newStubTransport()
	transport.stubJSON(http.MethodGet, "/tunes?offset=20", http.StatusOK, `[{"id":1,"title":"A"},{"id":2,"title":"B"}]`)
	client := newTestClient(t, transport)

	tunes, err := client.ListTunes(context.Background(), 20)
	if err != nil {
		t.Fatalf("list tunes: %v", err)
	}
	if len(tunes) != 2 || tunes[0].ID != 1 || tunes[1].ID != 2 {
		t.Fatalf("tunes = %+v, want ids 1 and 2 in order", tunes)
	}
}

func TestCreateTuneRequiresImages(t *testing.T) {
	transport := newStubTransport()
	client := newTestClient(t, transport)

	_, err := client.CreateTune(context.Background(), CreateTuneParams{Title: "Portrait", Name: "woman"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(transport.requests) != 0 {
		t.Fatalf("requests = %d, want 0 before validation passes", len(transport.requests))
	}
}

func TestCreateTuneMultipartForm(t *testing.T) {
	transport := newStubTransport()
	transport.stubJSON(http.MethodPost, "/tunes", http.StatusCreated, `{"id":31,"title":"Portrait","name":"woman"}`)
	client := newTestClient(t, transport)

	tune, err := client.CreateTune(context.Background(), CreateTuneParams{
		Title:       "Portrait",
		Name:        "woman",
		Branch:      BranchFlux,
		CallbackURL: "https://example.com/callbacks/tunes",
		ImageURLs:   []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"},
		Images: []TuneImage{
			{Filename: "three.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
		},
	})
	if err != nil {
		t.Fatalf("create tune: %v", err)
	}
	if tune.ID != 31 {
		t.Fatalf("tune.ID = %d, want 31", tune.ID)
	}

	if len(transport.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(transport.requests))
	}
	req := transport.requests[0]
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("Content-Type = %q (%v), want multipart/form-data", req.Header.Get("Content-Type"), err)
	}

	reader := multipart.NewReader(bytes.NewReader(transport.bodies[0]), params["boundary"])
	fields := map[string][]string{}
	var fileData []byte
	var fileName, fileType, filePartName string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		data, _ := io.ReadAll(part)
		if part.FileName() != "" {
			filePartName = part.FormName()
			fileName = part.FileName()
			fileType = part.Header.Get("Content-Type")
			fileData = data
			continue
		}
		fields[part.FormName()] = append(fields[part.FormName()], string(data))
	}

	if got := fields["tune[title]"]; len(got) != 1 || got[0] != "Portrait" {
		t.Fatalf("tune[title] = %v", got)
	}
	if got := fields["tune[name]"]; len(got) != 1 || got[0] != "woman" {
		t.Fatalf("tune[name] = %v", got)
	}
	if got := fields["tune[branch]"]; len(got) != 1 || got[0] != BranchFlux {
		t.Fatalf("tune[branch] = %v", got)
	}
	if got := fields["tune[callback]"]; len(got) != 1 || got[0] != "https://example.com/callbacks/tunes" {
		t.Fatalf("tune[callback] = %v", got)
	}
	if got := fields["tune[image_urls][]"]; len(got) != 2 {
		t.Fatalf("tune[image_urls][] = %v, want 2 entries", got)
	}
	if _, ok := fields["tune[preset]"]; ok {
		t.Fatalf("empty tune[preset] should be omitted")
	}
	if filePartName != "tune[images][]" {
		t.Fatalf("file part name = %q, want tune[images][]", filePartName)
	}
	if fileName != "three.png" || fileType != "image/png" {
		t.Fatalf("file part = %q (%s)", fileName, fileType)
	}
	if !bytes.Equal(fileData, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("file data mismatch: %v", fileData)
	}
}
