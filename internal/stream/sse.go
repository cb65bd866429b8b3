package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/utils"
)

var ErrClosed = errors.New("stream closed")

const maxEventSize = 1024 * 1024

// Reader splits a text/event-stream body into event data payloads.
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)
	return &Reader{scanner: scanner}
}

// Next returns the data of the next event. Multiple data lines are joined with
// "\n"; comments and fields other than data are ignored, and events that carry no
// data are skipped. It returns io.EOF once the body is exhausted.
func (r *Reader) Next() (string, error) {
	var data []string
	hasData := false
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			if hasData {
				return strings.Join(data, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			data = append(data, value)
			hasData = true
		}
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	// an event not terminated by a blank line is discarded at end of stream
	return "", io.EOF
}

// Conn is one open event stream for a download request.
type Conn struct {
	body   io.ReadCloser
	reader *Reader
	closed atomic.Bool
	once   sync.Once
}

// Dial opens GET <baseURL>/download?spotify_link=<link>.
func Dial(ctx context.Context, client utils.HTTPDoer, baseURL, link string) (*Conn, error) {
	streamURL := strings.TrimRight(baseURL, "/") + "/download?spotify_link=" + url.QueryEscape(link)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	log.Debug().Str("op", "stream/sse").Msgf("opening event stream %s", streamURL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error opening event stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}
	return &Conn{
		body:   resp.Body,
		reader: NewReader(resp.Body),
	}, nil
}

// Recv blocks until the next event arrives. After Close it returns ErrClosed.
func (c *Conn) Recv() (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	data, err := c.reader.Next()
	if err != nil && c.closed.Load() {
		return "", ErrClosed
	}
	return data, err
}

// Close releases the connection. Calling it more than once is a no-op.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		err = c.body.Close()
		log.Debug().Str("op", "stream/sse").Msg("event stream closed")
	})
	return err
}
