package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/artifact"
	"github.com/tanq16/playlistdl/internal/output"
	"github.com/tanq16/playlistdl/internal/session"
	"github.com/tanq16/playlistdl/internal/stream"
	"github.com/tanq16/playlistdl/internal/utils"
)

var ErrFailedJobs = errors.New("one or more downloads failed")

type Job struct {
	Link      string
	OutputDir string
}

type Config struct {
	BaseURL string
	// Client serves regular requests such as artifact fetches.
	Client *utils.HTTPClient
	// Stream has no overall timeout and carries the event streams.
	Stream      *utils.HTTPClient
	Artifact    artifact.Options
	Out         io.Writer
	Interactive bool
}

type JobResult struct {
	Link     string
	Outcome  session.Outcome
	Artifact artifact.Result
	Err      error
}

type Report struct {
	Results []JobResult
	Failed  int
}

// Run processes jobs one at a time; each job is a full download session
// followed by artifact handling. It returns ErrFailedJobs when any job failed.
func Run(ctx context.Context, jobs []Job, cfg Config) (Report, error) {
	mgr := output.NewManager(cfg.Out, cfg.Interactive)
	view := output.NewSessionView(mgr)
	dial := func(ctx context.Context, link string) (session.Stream, error) {
		conn, err := stream.Dial(ctx, cfg.Stream, cfg.BaseURL, link)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	controller := session.NewController(dial, view)
	defer controller.Close()

	mgr.StartDisplay()
	var report Report
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		res := processJob(ctx, job, cfg, controller, view, mgr)
		if res.Err != nil {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	mgr.StopDisplay()
	mgr.ShowSummary()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if report.Failed > 0 {
		return report, ErrFailedJobs
	}
	return report, nil
}

func processJob(ctx context.Context, job Job, cfg Config, controller *session.Controller, view *output.SessionView, mgr *output.Manager) JobResult {
	res := JobResult{Link: job.Link}
	view.SetLabel(job.Link)
	if err := controller.StartDownload(ctx, job.Link); err != nil {
		res.Err = err
		return res
	}
	outcome, err := controller.Wait(ctx)
	if err != nil {
		controller.Close()
		res.Err = err
		return res
	}
	res.Outcome = outcome
	if outcome.Status == session.Failed {
		res.Err = errors.New(outcome.Message)
		return res
	}
	if outcome.Path == "" {
		log.Info().Str("op", "scheduler/scheduler").Msgf("%s completed without an artifact", job.Link)
		return res
	}

	entryID, _ := view.EntryID(controller.Snapshot().ID)
	opts := cfg.Artifact
	if job.OutputDir != "" {
		opts.OutputDir = job.OutputDir
	}
	handler := artifact.NewHandler(cfg.Client, cfg.BaseURL, opts)
	result, err := handler.Handle(ctx, outcome.Path, func(done, total int64) {
		text := utils.FormatBytes(uint64(done))
		if total > 0 {
			text += " / " + utils.FormatBytes(uint64(total))
		}
		mgr.AddByteProgress(entryID, done, total, " "+text)
	})
	res.Artifact = result
	if err != nil {
		mgr.ReportError(entryID, fmt.Errorf("error handling artifact: %w", err))
		res.Err = err
		return res
	}
	switch {
	case len(result.Uploaded) > 0:
		mgr.Complete(entryID, fmt.Sprintf("Saved %s and uploaded %d object(s)", result.LocalPath, len(result.Uploaded)))
	case result.LocalPath != "":
		mgr.Complete(entryID, "Saved "+result.LocalPath)
	default:
		mgr.Complete(entryID, "Ready at "+result.URL)
	}
	return res
}
