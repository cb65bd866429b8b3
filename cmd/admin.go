package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/backend"
	"github.com/tanq16/playlistdl/internal/config"
	"github.com/tanq16/playlistdl/internal/output"
	"golang.org/x/term"
)

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine("Password: ")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func newLoginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the server administrator",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if username == "" {
				username = cfg.Username
			}
			var err error
			if username == "" {
				if username, err = promptLine("Username: "); err != nil {
					exitOnError("Error reading username", err)
				}
			}
			password := cfg.Password
			if password == "" {
				if password, err = promptPassword(); err != nil {
					exitOnError("Error reading password", err)
				}
			}
			client, _ := newBackendClient()
			if err := client.Login(cmd.Context(), username, password); err != nil {
				var opErr *backend.OperationError
				if errors.As(err, &opErr) {
					output.PrintError(opErr.Error())
					os.Exit(1)
				}
				exitOnError("Login request failed", err)
			}
			state.Session = client.SessionCookie()
			if sc, err := client.ReadConfig(cmd.Context()); err == nil {
				state.Config = sc
			}
			saveState()
			output.PrintSuccess("Logged in as " + username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Administrator username (defaults to $"+config.EnvUsername+")")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the administrator session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newBackendClient()
			if err := client.Logout(cmd.Context()); err != nil {
				exitOnError("Logout failed", err)
			}
			state.Session = ""
			state.Config = nil
			saveState()
			output.PrintSuccess("Logged out")
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, login and cookie state",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newBackendClient()
			loggedIn, err := client.CheckLogin(cmd.Context())
			if err != nil {
				exitOnError("Could not reach server", err)
			}
			output.PrintHeader("playlistdl " + PlaylistdlVersion)
			output.PrintKeyValue("server", cfg.Server)
			if loggedIn {
				output.PrintKeyValue("admin", output.FSuccess("logged in"))
			} else {
				output.PrintKeyValue("admin", output.FWarning("not logged in"))
				if state.Session != "" {
					// server no longer accepts the stored session
					state.Session = ""
					saveState()
				}
			}
			sc, err := client.ReadConfig(cmd.Context())
			if err != nil {
				output.PrintKeyValue("cookie", output.FDebug(fmt.Sprintf("unknown (%v)", err)))
				return
			}
			state.Config = sc
			saveState()
			if sc.CookieEnabled() {
				output.PrintKeyValue("cookie", output.FSuccess("enabled"))
			} else {
				output.PrintKeyValue("cookie", output.FDebug("disabled"))
			}
		},
	}
}

func newSetPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-path [PATH]",
		Short: "Set the server-side directory for administrator downloads",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, _ := newBackendClient()
			newPath, err := client.SetDownloadPath(cmd.Context(), args[0])
			if err != nil {
				exitOnError("Could not set download path", err)
			}
			output.PrintSuccess("Download path set to " + newPath)
		},
	}
}
