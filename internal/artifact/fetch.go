package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/utils"
)

// ProgressFunc receives the bytes written so far and the expected total, which
// is -1 when the server sends no length.
type ProgressFunc func(downloaded, total int64)

type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Status, e.URL)
}

// Fetch downloads url into outputPath through a temporary .part file and returns
// the final path. An existing file is never overwritten; a numbered sibling is
// used instead.
func Fetch(ctx context.Context, client utils.HTTPDoer, url, outputPath string, progress ProgressFunc) (string, error) {
	if _, err := os.Stat(outputPath); err == nil {
		outputPath = utils.RenewOutputPath(outputPath)
	}
	outputDir := filepath.Dir(outputPath)
	tempDir := filepath.Join(outputDir, utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("error creating temp directory: %w", err)
	}
	tempPath := filepath.Join(tempDir, filepath.Base(outputPath)+".part")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating GET request: %w", err)
	}
	log.Debug().Str("op", "artifact/fetch").Msgf("fetching %s", url)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, Status: resp.StatusCode}
	}

	written, err := writeBody(resp.Body, tempPath, resp.ContentLength, progress)
	if err != nil {
		os.Remove(tempPath)
		return "", err
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("error moving artifact into place: %w", err)
	}
	// only succeeds once the temp directory is empty
	os.Remove(tempDir)
	log.Info().Str("op", "artifact/fetch").Msgf("saved %s (%s)", outputPath, utils.FormatBytes(uint64(written)))
	return outputPath, nil
}

func writeBody(body io.Reader, path string, total int64, progress ProgressFunc) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %w", err)
	}
	defer out.Close()

	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		n, err := body.Read(buffer)
		if n > 0 {
			if _, writeErr := out.Write(buffer[:n]); writeErr != nil {
				return written, fmt.Errorf("error writing to output file: %w", writeErr)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("error reading response body: %w", err)
		}
	}
	if total > 0 && written != total {
		return written, fmt.Errorf("incomplete download: got %d of %d bytes", written, total)
	}
	return written, out.Close()
}
