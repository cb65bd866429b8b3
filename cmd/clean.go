package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/output"
	"github.com/tanq16/playlistdl/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove partial artifact files left by interrupted fetches",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := cfg.OutputDir
			if len(args) > 0 {
				dir = args[0]
			}
			if err := utils.Clean(dir); err != nil {
				exitOnError("Error cleaning up temporary files", err)
			}
			output.PrintSuccess("Temporary files cleaned up")
		},
	}
}
