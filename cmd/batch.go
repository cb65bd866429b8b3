package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/scheduler"
	"github.com/tanq16/playlistdl/internal/utils"
)

func newBatchCmd() *cobra.Command {
	flags := &artifactFlags{}
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Download every link in a YAML file, one after another",
		Long: `The YAML file is a list of entries:

  - link: https://open.spotify.com/album/...
  - link: https://open.spotify.com/track/...
    op: ./singles`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := utils.ReadDownloadList(args[0])
			if err != nil {
				exitOnError("Failed to read batch file", err)
			}
			jobs := make([]scheduler.Job, 0, len(entries))
			for _, entry := range entries {
				jobs = append(jobs, scheduler.Job{Link: entry.Link, OutputDir: entry.OutputDir})
			}
			runJobs(cmd.Context(), jobs, flags)
		},
	}
	flags.register(cmd)
	return cmd
}
