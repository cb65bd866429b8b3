package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Basic dXNlcjpwYXNz",
		"X-Trace:  abc ",
		"malformed",
	})
	if len(headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(headers))
	}
	if headers["Authorization"] != "Basic dXNlcjpwYXNz" {
		t.Errorf("unexpected Authorization value %q", headers["Authorization"])
	}
	if headers["X-Trace"] != "abc" {
		t.Errorf("unexpected X-Trace value %q", headers["X-Trace"])
	}
}

func TestRenewOutputPath(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(original, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	renewed := RenewOutputPath(original)
	if renewed != filepath.Join(dir, "song-(1).mp3") {
		t.Errorf("unexpected renewed path %s", renewed)
	}
	if err := os.WriteFile(renewed, []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if next := RenewOutputPath(original); next != filepath.Join(dir, "song-(2).mp3") {
		t.Errorf("unexpected second renewed path %s", next)
	}
}

func TestReadDownloadList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	content := "- link: https://open.spotify.com/track/1\n- link: \"  \"\n- link: https://youtu.be/abc\n  op: music\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := ReadDownloadList(path)
	if err != nil {
		t.Fatalf("ReadDownloadList: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].OutputDir != "music" {
		t.Errorf("expected output dir 'music', got %q", entries[1].OutputDir)
	}
}

func TestReadDownloadListEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte("[]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDownloadList(path); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	tempDir := filepath.Join(dir, TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "a.zip.part"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Clean(dir); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("expected temp dir to be removed, stat err = %v", err)
	}
	if err := Clean(dir); err != nil {
		t.Errorf("Clean on missing temp dir: %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[uint64]string{
		512:         "512 B",
		2048:        "2.00 KB",
		5 * 1 << 20: "5.00 MB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
