package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/backend"
	"github.com/tanq16/playlistdl/internal/utils"
)

type Options struct {
	OutputDir string
	Fetch     bool
	Extract   bool
	// KeepArchive keeps the zip next to the extracted files.
	KeepArchive bool
	Open        bool
	Sink        *S3Sink
}

// Result describes what happened to one artifact.
type Result struct {
	URL       string
	LocalPath string
	Extracted []string
	Uploaded  []string
}

// Handler turns the relative artifact path reported by a session into local
// files and any configured side effects.
type Handler struct {
	client  utils.HTTPDoer
	baseURL string
	opts    Options
	openURL func(string) error
}

func NewHandler(client utils.HTTPDoer, baseURL string, opts Options) *Handler {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Handler{
		client:  client,
		baseURL: baseURL,
		opts:    opts,
		openURL: browser.OpenURL,
	}
}

func (h *Handler) Handle(ctx context.Context, artifactPath string, progress ProgressFunc) (Result, error) {
	res := Result{URL: backend.ArtifactURL(h.baseURL, artifactPath)}
	if h.opts.Open {
		if err := h.openURL(res.URL); err != nil {
			log.Warn().Str("op", "artifact/handler").Err(err).Msg("error opening browser")
		}
	}
	if !h.opts.Fetch {
		return res, nil
	}

	target := filepath.Join(h.opts.OutputDir, backend.ArtifactName(artifactPath))
	local, err := Fetch(ctx, h.client, res.URL, target, progress)
	if err != nil {
		return res, err
	}
	res.LocalPath = local

	uploadPath := local
	if h.opts.Extract {
		dest := strings.TrimSuffix(local, filepath.Ext(local))
		files, err := Extract(ctx, local, dest)
		switch {
		case errors.Is(err, ErrNotArchive):
			log.Debug().Str("op", "artifact/handler").Msgf("%s is not an archive, skipping extraction", local)
		case err != nil:
			return res, err
		default:
			res.Extracted = files
			uploadPath = dest
			if !h.opts.KeepArchive {
				if err := os.Remove(local); err != nil {
					log.Warn().Str("op", "artifact/handler").Err(err).Msg("error removing archive")
				} else {
					res.LocalPath = dest
				}
			}
		}
	}

	if h.opts.Sink != nil {
		uris, err := h.opts.Sink.Upload(ctx, uploadPath)
		res.Uploaded = uris
		if err != nil {
			return res, fmt.Errorf("error uploading artifact: %w", err)
		}
	}
	return res, nil
}
