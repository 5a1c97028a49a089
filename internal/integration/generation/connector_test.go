package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/retry"
	"go.uber.org/zap"
)

func testConnector(t *testing.T, serviceURL string) *Connector {
	t.Helper()
	return NewConnector(config.GenerationConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   serviceURL,
		},
		GenerateEndpoint: "/generate",
		FollowUpEndpoint: "/follow-up",
		DownloadRetry:    retry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: 10 * time.Millisecond},
	}, zap.NewNop())
}

func fieldsWithImages() *entity.FieldSet {
	return &entity.FieldSet{
		ThemeColor:       "#FF6B6B",
		Category:         "gaming",
		FinalDescription: "Epic boss battle, neon colors, shocked face",
		BgImg: &entity.ImageItem{
			Data: []byte("bg bytes"), Filename: "bg.png", ContentType: "image/png", Description: "dark arena",
		},
		ImgIcons: []entity.ImageItem{
			{Data: []byte("ic1"), Filename: "sword.png", ContentType: "image/png", Description: "crossed swords"},
			{Data: []byte("ic2"), Filename: "shield.png", ContentType: "image/png", Description: "iron shield"},
		},
	}
}

func TestGenerateFormLayout(t *testing.T) {
	var gotForm struct {
		finalDescription string
		themeColor       string
		category         string
		bgDescription    string
		bgFiles          int
		majorFiles       int
		iconFiles        int
		iconDescriptions []string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}

		gotForm.finalDescription = r.FormValue("finalDescription")
		gotForm.themeColor = r.FormValue("themeColor")
		gotForm.category = r.FormValue("category")
		gotForm.bgDescription = r.FormValue("bgImgDescription")
		gotForm.bgFiles = len(r.MultipartForm.File["bgImg"])
		gotForm.majorFiles = len(r.MultipartForm.File["majorImg"])
		gotForm.iconFiles = len(r.MultipartForm.File["imgIcons"])
		if raw := r.FormValue("imgDescriptions"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &gotForm.iconDescriptions); err != nil {
				t.Errorf("imgDescriptions is not a JSON array: %v", err)
			}
		}

		json.NewEncoder(w).Encode(map[string]any{"success": true, "url": "https://cdn.example/out.png"})
	}))
	defer srv.Close()

	res := testConnector(t, srv.URL).Generate(context.Background(), fieldsWithImages())

	if !res.Success || res.URL != "https://cdn.example/out.png" {
		t.Fatalf("result = %+v", res)
	}
	if gotForm.finalDescription != "Epic boss battle, neon colors, shocked face" ||
		gotForm.themeColor != "#FF6B6B" || gotForm.category != "gaming" {
		t.Errorf("text fields = %+v", gotForm)
	}
	if gotForm.bgFiles != 1 || gotForm.bgDescription != "dark arena" {
		t.Errorf("background slot = %d files, description %q", gotForm.bgFiles, gotForm.bgDescription)
	}
	if gotForm.majorFiles != 0 {
		t.Errorf("major slot sent %d files with no major image", gotForm.majorFiles)
	}
	if gotForm.iconFiles != 2 || len(gotForm.iconDescriptions) != 2 {
		t.Errorf("icons = %d files, descriptions %v", gotForm.iconFiles, gotForm.iconDescriptions)
	}
	if len(gotForm.iconDescriptions) == 2 && gotForm.iconDescriptions[0] != "crossed swords" {
		t.Errorf("icon descriptions out of order: %v", gotForm.iconDescriptions)
	}
}

func TestGenerateOmitsIconDescriptionsWithoutIcons(t *testing.T) {
	var sawIconDescriptions bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		_, sawIconDescriptions = r.MultipartForm.Value["imgDescriptions"]
		json.NewEncoder(w).Encode(map[string]any{"success": true, "url": "https://cdn.example/out.png"})
	}))
	defer srv.Close()

	fields := &entity.FieldSet{
		ThemeColor:       "#FF6B6B",
		Category:         "gaming",
		FinalDescription: "Epic boss battle, neon colors, shocked face",
	}
	res := testConnector(t, srv.URL).Generate(context.Background(), fields)

	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if sawIconDescriptions {
		t.Error("imgDescriptions field sent with zero icons")
	}
}

func TestGenerateFoldsFailuresIntoResult(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantError string
	}{
		{
			name: "service error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantError: "service returned HTTP 502",
		},
		{
			name: "service reports failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "quota exceeded"})
			},
			wantError: "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			res := testConnector(t, srv.URL).Generate(context.Background(), fieldsWithImages())

			if res.Success {
				t.Fatal("expected a failed result")
			}
			if res.Error != tt.wantError {
				t.Errorf("error = %q, want %q", res.Error, tt.wantError)
			}
		})
	}
}

func TestGenerateUnreachableService(t *testing.T) {
	res := testConnector(t, "http://127.0.0.1:1").Generate(context.Background(), fieldsWithImages())

	if res.Success {
		t.Fatal("expected a failed result")
	}
	if res.Error != "could not reach the generation service" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestFollowUpRequest(t *testing.T) {
	var got followUpRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/follow-up" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "url": "https://cdn.example/v2.png"})
	}))
	defer srv.Close()

	res := testConnector(t, srv.URL).FollowUp(context.Background(), "make it brighter", "https://cdn.example/v1.png")

	if !res.Success || res.URL != "https://cdn.example/v2.png" {
		t.Fatalf("result = %+v", res)
	}
	if got.Instruction != "make it brighter" || got.ImageURL != "https://cdn.example/v1.png" {
		t.Errorf("request body = %+v", got)
	}
}

func TestDownloadRetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))
	defer srv.Close()

	data, contentType, err := testConnector(t, srv.URL).Download(context.Background(), srv.URL+"/image.png")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "png bytes" || contentType != "image/png" {
		t.Errorf("download returned %q / %s", data, contentType)
	}
	if calls != 2 {
		t.Errorf("server hit %d times, want 2", calls)
	}
}
