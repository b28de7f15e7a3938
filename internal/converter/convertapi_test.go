package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempPptx(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, []byte("fake pptx bytes"), 0644); err != nil {
		t.Fatalf("write temp pptx: %v", err)
	}
	return path
}

// newMockConvertAPI serves both the conversion endpoint and the stored image
// downloads. failDownloads lists slide indexes whose download returns a 500.
func newMockConvertAPI(t *testing.T, slideCount int, failDownloads map[int]bool) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/convert/pptx/to/jpg", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("Secret") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"Code": 4013, "Message": "User credentials not set"}`)
			return
		}
		files := make([]string, 0, slideCount)
		for i := 0; i < slideCount; i++ {
			files = append(files, fmt.Sprintf(`{"FileName":"deck-%d.jpg","FileExt":"jpg","FileSize":1024,"Url":"%s/files/%d"}`, i, server.URL, i))
		}
		fmt.Fprintf(w, `{"ConversionCost":4,"Files":[%s]}`, strings.Join(files, ","))
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		var index int
		fmt.Sscanf(r.URL.Path, "/files/%d", &index)
		if failDownloads[index] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "jpeg bytes for slide %d", index)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestConvertHappyPath(t *testing.T) {
	server := newMockConvertAPI(t, 3, nil)
	client := NewConvertAPIClient("secret", server.URL, "10s")

	outputDir := t.TempDir()
	images, err := client.Convert(context.Background(), writeTempPptx(t), outputDir)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("got %d images, want 3", len(images))
	}
	for i, img := range images {
		if img.SlideIndex != i {
			t.Errorf("image %d has slide index %d", i, img.SlideIndex)
		}
		want := filepath.Join(outputDir, fmt.Sprintf("slide_%d.jpg", i))
		if img.ImagePath != want {
			t.Errorf("image %d path = %q, want %q", i, img.ImagePath, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("image file %s missing: %v", want, err)
		}
		if img.Width != DefaultSlideWidth || img.Height != DefaultSlideHeight {
			t.Errorf("image %d dimensions = %dx%d", i, img.Width, img.Height)
		}
	}
}

func TestConvertMissingSourceFile(t *testing.T) {
	server := newMockConvertAPI(t, 1, nil)
	client := NewConvertAPIClient("secret", server.URL, "10s")

	missing := filepath.Join(t.TempDir(), "nope.pptx")
	_, err := client.Convert(context.Background(), missing, t.TempDir())
	if err == nil {
		t.Fatal("Convert with missing file should fail")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q does not name the missing path", err)
	}
}

func TestConvertUnauthorized(t *testing.T) {
	server := newMockConvertAPI(t, 1, nil)
	client := NewConvertAPIClient("", server.URL, "10s")

	_, err := client.Convert(context.Background(), writeTempPptx(t), t.TempDir())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestConvertSkipsFailedDownloads(t *testing.T) {
	server := newMockConvertAPI(t, 3, map[int]bool{1: true})
	client := NewConvertAPIClient("secret", server.URL, "10s")

	images, err := client.Convert(context.Background(), writeTempPptx(t), t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2 (slide 1 skipped)", len(images))
	}
	for _, img := range images {
		if img.SlideIndex == 1 {
			t.Error("failed slide 1 should have been skipped")
		}
	}
}

func TestIsAuthError(t *testing.T) {
	for _, msg := range []string{
		"Unauthorized request",
		"User credentials not set",
		"rejected, Code: 401",
		"rejected, Code: 4013",
	} {
		if !isAuthError(msg) {
			t.Errorf("isAuthError(%q) = false", msg)
		}
	}
	if isAuthError("quota exceeded") {
		t.Error("quota error misclassified as auth failure")
	}
}
