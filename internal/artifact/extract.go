package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v4"
	"github.com/rs/zerolog/log"
)

var ErrNotArchive = errors.New("file is not a supported archive")

// Extract unpacks the archive at src into dest and returns the extracted file
// paths. Entries that would land outside dest are rejected.
func Extract(ctx context.Context, src, dest string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("error opening archive: %w", err)
	}
	defer f.Close()

	format, input, err := archiver.Identify(filepath.Base(src), f)
	if errors.Is(err, archiver.ErrNoMatch) {
		return nil, ErrNotArchive
	}
	if err != nil {
		return nil, fmt.Errorf("error identifying archive: %w", err)
	}
	ex, ok := format.(archiver.Extractor)
	if !ok {
		return nil, ErrNotArchive
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("error creating extraction directory: %w", err)
	}
	root, err := filepath.Abs(dest)
	if err != nil {
		return nil, err
	}

	var extracted []string
	handler := func(ctx context.Context, file archiver.File) error {
		target := filepath.Join(root, filepath.FromSlash(file.NameInArchive))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", file.NameInArchive)
		}
		if file.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		af, err := file.Open()
		if err != nil {
			return err
		}
		defer af.Close()
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm()|0200)
		if err != nil {
			return err
		}
		defer out.Close()
		if _, err := io.Copy(out, af); err != nil {
			return err
		}
		extracted = append(extracted, target)
		return nil
	}
	if err := ex.Extract(ctx, input, nil, handler); err != nil {
		return extracted, fmt.Errorf("error extracting %s: %w", src, err)
	}
	log.Debug().Str("op", "artifact/extract").Msgf("extracted %d files from %s", len(extracted), src)
	return extracted, nil
}
