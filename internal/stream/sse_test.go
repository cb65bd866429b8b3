package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tanq16/playlistdl/internal/utils"
)

func TestReaderNext(t *testing.T) {
	body := ": keep-alive\n\n" +
		"data: Fetching metadata\n\n" +
		"event: log\r\ndata: first\r\ndata: second\r\n\r\n" +
		"id: 7\n\n" +
		"data:DOWNLOAD: abc/song.mp3\n\n" +
		"data: dangling"
	reader := NewReader(strings.NewReader(body))
	want := []string{"Fetching metadata", "first\nsecond", "DOWNLOAD: abc/song.mp3"}
	for i, w := range want {
		got, err := reader.Next()
		if err != nil {
			t.Fatalf("event %d: unexpected error %v", i, err)
		}
		if got != w {
			t.Errorf("event %d: expected %q, got %q", i, w, got)
		}
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestDialAndRecv(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("spotify_link"); got != "https://open.spotify.com/album/x?si=1&a=b" {
			t.Errorf("unexpected link %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: Downloading track 1\n\n")
		fmt.Fprint(w, "data: Error: rate limited\n\n")
	}))
	defer server.Close()

	client := utils.NewHTTPClient(utils.HTTPClientConfig{}).Streaming()
	conn, err := Dial(context.Background(), client, server.URL+"/", "https://open.spotify.com/album/x?si=1&a=b")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	for _, want := range []string{"Downloading track 1", "Error: rate limited"} {
		got, err := conn.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
	if _, err := conn.Recv(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestDialStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := utils.NewHTTPClient(utils.HTTPClientConfig{})
	if _, err := Dial(context.Background(), client, server.URL, "x"); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestCloseUnblocksRecv(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	conn, err := Dial(context.Background(), utils.NewHTTPClient(utils.HTTPClientConfig{}).Streaming(), server.URL, "x")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Recv()
		errCh <- err
	}()
	time.Sleep(50 * time.Millisecond)
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Close")
	}
}
