package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/backend"
	"github.com/tanq16/playlistdl/internal/output"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect client and server configuration",
	}
	var cached bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective client config and the server session config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.PrintHeader("client")
			data, err := yaml.Marshal(cfg)
			if err != nil {
				exitOnError("Error encoding config", err)
			}
			os.Stdout.Write(data)

			sessionConfig := backend.SessionConfig(state.Config)
			if !cached {
				client, _ := newBackendClient()
				sc, err := client.ReadConfig(cmd.Context())
				if err != nil {
					output.PrintWarning("Could not read server config, showing cached copy: " + err.Error())
				} else {
					sessionConfig = sc
					state.Config = sc
					saveState()
				}
			}
			output.PrintHeader("server")
			if len(sessionConfig) == 0 {
				output.PrintInfo("  (empty)")
				return
			}
			data, err = yaml.Marshal(map[string]any(sessionConfig))
			if err != nil {
				exitOnError("Error encoding server config", err)
			}
			os.Stdout.Write(data)
		},
	}
	show.Flags().BoolVar(&cached, "cached", false, "Only show the server config cached from the last run")
	cmd.AddCommand(show)
	return cmd
}

func newCookieCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookie",
		Short: "Manage the cookies file the server passes to its downloader",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "enable [COOKIE_FILE]",
		Short: "Upload a cookies file and enable it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newBackendClient()
			if err := client.EnableCookie(cmd.Context(), args[0]); err != nil {
				exitOnError("Could not enable cookie", err)
			}
			refreshSessionConfig(cmd, client)
			output.PrintSuccess("Cookie file uploaded")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop using the uploaded cookies file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newBackendClient()
			if err := client.DisableCookie(cmd.Context()); err != nil {
				exitOnError("Could not disable cookie", err)
			}
			refreshSessionConfig(cmd, client)
			output.PrintSuccess("Cookie disabled")
		},
	})
	return cmd
}

func refreshSessionConfig(cmd *cobra.Command, client *backend.Client) {
	sc, err := client.ReadConfig(cmd.Context())
	if err != nil {
		output.PrintWarning("Could not refresh server config: " + err.Error())
		return
	}
	state.Config = sc
	saveState()
}
