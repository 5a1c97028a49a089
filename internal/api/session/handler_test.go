package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drumil32/thumbnail-maker-backend/internal/api/session"
	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/validator"
	"github.com/drumil32/thumbnail-maker-backend/internal/repository"
	"github.com/drumil32/thumbnail-maker-backend/internal/usecase/chat"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type stubGenerator struct {
	generateResult *entity.GenerationResult
	followUpResult *entity.GenerationResult
}

func (s *stubGenerator) Generate(ctx context.Context, fields *entity.FieldSet) *entity.GenerationResult {
	return s.generateResult
}

func (s *stubGenerator) FollowUp(ctx context.Context, instruction, currentURL string) *entity.GenerationResult {
	return s.followUpResult
}

func (s *stubGenerator) Download(ctx context.Context, url string) ([]byte, string, error) {
	return []byte("png bytes"), "image/png", nil
}

func newTestServer(t *testing.T, gen *stubGenerator) *httptest.Server {
	t.Helper()

	uploadCfg := config.UploadConfig{
		MaxFileSize:  5 * 1024 * 1024,
		MaxIconCount: 5,
		MaxFormSize:  32 * 1024 * 1024,
	}
	store := repository.NewSessionMemory(config.SessionConfig{
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	machine := conversation.NewMachine(validator.NewFieldValidator(uploadCfg), uploadCfg.MaxIconCount)
	uc := chat.NewUsecase(store, machine, gen, zap.NewNop())

	r := chi.NewRouter()
	session.RegisterRoutes(r, session.NewHandler(uc, uploadCfg))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, *entity.SessionSnapshot) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode >= 400 {
		return resp, nil
	}
	var snap entity.SessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return resp, &snap
}

func getSnapshot(t *testing.T, url string) *entity.SessionSnapshot {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}

	var snap entity.SessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return &snap
}

// waitForStep polls until the session reaches the step or the deadline
// passes, covering the background generation goroutine
func waitForStep(t *testing.T, baseURL, id, step string) *entity.SessionSnapshot {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snap := getSnapshot(t, baseURL+"/chat-session/"+id)
		if snap.Step == step && !snap.Pending {
			return snap
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("session %s never reached step %q", id, step)
	return nil
}

// startAtDescription drives a session over HTTP to the description step
func startAtDescription(t *testing.T, baseURL string) string {
	t.Helper()

	resp, snap := postJSON(t, baseURL+"/chat-session", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: status %d", resp.StatusCode)
	}
	id := snap.SessionID

	steps := []struct {
		path string
		body any
	}{
		{"/option", entity.OptionRequest{OptionID: "skip-images"}},
		{"/style", entity.StyleUpdateRequest{ThemeColor: "#FF6B6B", Category: "gaming"}},
		{"/style/done", nil},
		{"/confirm", nil},
	}
	for _, s := range steps {
		resp, _ := postJSON(t, baseURL+"/chat-session/"+id+s.path, s.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST %s: status %d", s.path, resp.StatusCode)
		}
	}

	return id
}

func TestStartSessionEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	resp, snap := postJSON(t, srv.URL+"/chat-session", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if snap.Step != "ask-images" || len(snap.Messages) != 2 {
		t.Errorf("snapshot = step %s, %d messages", snap.Step, len(snap.Messages))
	}
	if snap.SessionID == "" {
		t.Error("snapshot has no session ID")
	}
}

func TestGetUnknownSessionReturns404(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	resp, err := http.Get(srv.URL + "/chat-session/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownOptionReturns400(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})
	_, snap := postJSON(t, srv.URL+"/chat-session", nil)

	resp, _ := postJSON(t, srv.URL+"/chat-session/"+snap.SessionID+"/option",
		entity.OptionRequest{OptionID: "bogus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDescriptionAcceptedRunsGeneration(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{
		generateResult: &entity.GenerationResult{Success: true, URL: "https://cdn.example/thumb.png"},
	})
	id := startAtDescription(t, srv.URL)

	resp, snap := postJSON(t, srv.URL+"/chat-session/"+id+"/description",
		entity.TextRequest{Text: "Epic boss battle, neon colors, shocked face"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if snap.Step != "generating" || !snap.Pending {
		t.Errorf("202 snapshot = step %s pending %v", snap.Step, snap.Pending)
	}

	final := waitForStep(t, srv.URL, id, "result")
	if final.ResultURL != "https://cdn.example/thumb.png" {
		t.Errorf("result URL = %s", final.ResultURL)
	}
}

func TestShortDescriptionAnswers200WithoutGeneration(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})
	id := startAtDescription(t, srv.URL)

	resp, snap := postJSON(t, srv.URL+"/chat-session/"+id+"/description",
		entity.TextRequest{Text: "short"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for local rejection", resp.StatusCode)
	}
	if snap.Step != "final-description" {
		t.Errorf("step = %s, want final-description", snap.Step)
	}

	last := snap.Messages[len(snap.Messages)-1]
	if !strings.Contains(last.Content, "too short") {
		t.Errorf("corrective message = %q", last.Content)
	}
}

func TestImageUploadAndAdvance(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})

	_, snap := postJSON(t, srv.URL+"/chat-session", nil)
	id := snap.SessionID
	if resp, _ := postJSON(t, srv.URL+"/chat-session/"+id+"/option",
		entity.OptionRequest{OptionID: "add-images"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("add-images: status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("imgIcons", "sword.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(fw, "png bytes")
	mw.WriteField("imgDescriptions", `["crossed swords"]`)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat-session/"+id+"/images", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: status %d", resp.StatusCode)
	}

	done, _ := postJSON(t, srv.URL+"/chat-session/"+id+"/images/done", nil)
	if done.StatusCode != http.StatusOK {
		t.Fatalf("images/done: status %d", done.StatusCode)
	}
	after := getSnapshot(t, srv.URL+"/chat-session/"+id)
	if after.Step != "collect-inputs" {
		t.Errorf("step after images/done = %s, want collect-inputs", after.Step)
	}
}

func TestDownloadWithoutResultConflicts(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})
	_, snap := postJSON(t, srv.URL+"/chat-session", nil)

	resp, err := http.Get(srv.URL + "/chat-session/" + snap.SessionID + "/download")
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestDownloadStreamsAttachment(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{
		generateResult: &entity.GenerationResult{Success: true, URL: "https://cdn.example/thumb.png"},
	})
	id := startAtDescription(t, srv.URL)

	if resp, _ := postJSON(t, srv.URL+"/chat-session/"+id+"/description",
		entity.TextRequest{Text: "Epic boss battle, neon colors, shocked face"}); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("description: status %d", resp.StatusCode)
	}
	waitForStep(t, srv.URL, id, "result")

	resp, err := http.Get(srv.URL + "/chat-session/" + id + "/download")
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %s", cd)
	}
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{})
	id := startAtDescription(t, srv.URL)

	resp, snap := postJSON(t, srv.URL+"/chat-session/"+id+"/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if snap.Step != "ask-images" || len(snap.Messages) != 2 {
		t.Errorf("reset snapshot = step %s, %d messages", snap.Step, len(snap.Messages))
	}
}
