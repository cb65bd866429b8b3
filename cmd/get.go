package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/artifact"
	"github.com/tanq16/playlistdl/internal/output"
	"github.com/tanq16/playlistdl/internal/scheduler"
)

// artifactFlags are shared by get and batch.
type artifactFlags struct {
	outputDir   string
	noFetch     bool
	extract     bool
	keepArchive bool
	open        bool
	s3Target    string
	s3Profile   string
}

func (f *artifactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Directory for fetched artifacts")
	cmd.Flags().BoolVar(&f.noFetch, "no-fetch", false, "Leave the artifact on the server and only print its URL")
	cmd.Flags().BoolVarP(&f.extract, "extract", "x", false, "Extract zipped playlist artifacts")
	cmd.Flags().BoolVar(&f.keepArchive, "keep-archive", false, "Keep the archive after extraction")
	cmd.Flags().BoolVar(&f.open, "open", false, "Open the artifact URL in the browser")
	cmd.Flags().StringVar(&f.s3Target, "s3", "", "Upload artifacts to s3://bucket/prefix")
	cmd.Flags().StringVar(&f.s3Profile, "s3-profile", "", "AWS profile for --s3")
}

func (f *artifactFlags) options(ctx context.Context) (artifact.Options, error) {
	opts := artifact.Options{
		OutputDir:   cfg.OutputDir,
		Fetch:       cfg.ShouldFetch() && !f.noFetch,
		Extract:     cfg.Extract || f.extract,
		KeepArchive: f.keepArchive,
		Open:        cfg.Open || f.open,
	}
	if f.outputDir != "" {
		opts.OutputDir = f.outputDir
	}
	target, profile := cfg.S3Target, cfg.S3Profile
	if f.s3Target != "" {
		target = f.s3Target
	}
	if f.s3Profile != "" {
		profile = f.s3Profile
	}
	if target != "" {
		if !opts.Fetch {
			return opts, errors.New("--s3 needs the artifact to be fetched, drop --no-fetch")
		}
		sink, err := artifact.NewS3Sink(ctx, target, profile)
		if err != nil {
			return opts, err
		}
		opts.Sink = sink
	}
	return opts, nil
}

func runJobs(ctx context.Context, jobs []scheduler.Job, flags *artifactFlags) {
	opts, err := flags.options(ctx)
	if err != nil {
		exitOnError("Invalid artifact options", err)
	}
	_, httpClient := newBackendClient()
	_, err = scheduler.Run(ctx, jobs, scheduler.Config{
		BaseURL:     cfg.Server,
		Client:      httpClient,
		Stream:      httpClient.Streaming(),
		Artifact:    opts,
		Out:         os.Stdout,
		Interactive: output.IsTerminal(os.Stdout) && !debug,
	})
	if err != nil {
		output.PrintError("Encountered failed download(s)")
		os.Exit(1)
	}
}

func newGetCmd() *cobra.Command {
	flags := &artifactFlags{}
	cmd := &cobra.Command{
		Use:     "get [LINK] [OPTIONS]",
		Aliases: []string{"download"},
		Short:   "Download a track, album or playlist link through the server",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runJobs(cmd.Context(), []scheduler.Job{{Link: args[0]}}, flags)
		},
	}
	flags.register(cmd)
	return cmd
}
