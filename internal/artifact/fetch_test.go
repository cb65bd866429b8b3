package artifact

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanq16/playlistdl/internal/utils"
)

func newClient() *utils.HTTPClient {
	return utils.NewHTTPClient(utils.HTTPClientConfig{})
}

func TestFetchWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	var last int64
	path, err := Fetch(context.Background(), newClient(), server.URL+"/downloads/a.mp3", filepath.Join(dir, "a.mp3"), func(done, total int64) {
		last = done
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio-bytes" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}
	if last != int64(len("audio-bytes")) {
		t.Errorf("expected progress to reach %d, got %d", len("audio-bytes"), last)
	}
	if _, err := os.Stat(filepath.Join(dir, utils.TempDirName)); !os.IsNotExist(err) {
		t.Error("expected temp directory to be removed")
	}
}

func TestFetchDoesNotOverwrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	}))
	defer server.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "a.mp3")
	os.WriteFile(existing, []byte("old"), 0644)
	path, err := Fetch(context.Background(), newClient(), server.URL, existing, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != filepath.Join(dir, "a-(1).mp3") {
		t.Errorf("expected renewed path, got %s", path)
	}
	if data, _ := os.ReadFile(existing); string(data) != "old" {
		t.Error("existing file was overwritten")
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := Fetch(context.Background(), newClient(), server.URL, filepath.Join(dir, "a.mp3"), nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.mp3")); !os.IsNotExist(err) {
		t.Error("expected no output file on failure")
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Album.zip")
	writeZip(t, src, map[string]string{
		"01 - Intro.mp3":      "one",
		"disc2/02 - Song.mp3": "two",
	})
	dest := filepath.Join(dir, "Album")
	files, err := Extract(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	data, err := os.ReadFile(filepath.Join(dest, "disc2", "02 - Song.mp3"))
	if err != nil || string(data) != "two" {
		t.Errorf("unexpected nested file content %q (%v)", data, err)
	}
}

func TestExtractNotArchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.txt")
	os.WriteFile(src, []byte("plain text, not an archive"), 0644)
	if _, err := Extract(context.Background(), src, filepath.Join(dir, "out")); !errors.Is(err, ErrNotArchive) {
		t.Errorf("expected ErrNotArchive, got %v", err)
	}
}
