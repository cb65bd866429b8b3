package cmd

import (
	"context"
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/playlistdl/internal/backend"
	"github.com/tanq16/playlistdl/internal/config"
	"github.com/tanq16/playlistdl/internal/output"
	"github.com/tanq16/playlistdl/internal/utils"
)

var (
	serverURL  string
	configPath string
	timeout    time.Duration
	kaTimeout  time.Duration
	userAgent  string
	proxyURL   string
	headers    []string
	debug      bool
	fileLog    bool

	cfg              config.ClientConfig
	state            config.State
	globalHTTPConfig utils.HTTPClientConfig
)

var PlaylistdlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "playlistdl",
	Short:   "playlistdl is a terminal client for a playlist-dl server",
	Version: PlaylistdlVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug, fileLog)
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		loaded.Apply(config.Overrides{
			Server:    serverURL,
			Timeout:   timeout,
			UserAgent: userAgent,
			Proxy:     proxyURL,
			Headers:   utils.ParseHeaderArgs(headers),
		})
		cfg = loaded
		state, err = config.LoadState(config.DefaultStatePath(), cfg.Server)
		if err != nil {
			log.Warn().Str("op", "cmd/root").Err(err).Msg("ignoring unreadable state file")
			state = config.State{Server: cfg.Server}
		}
		globalHTTPConfig = buildHTTPConfig(cfg)
		log.Debug().Str("op", "cmd/root").Msgf("using server %s", cfg.Server)
		return nil
	},
}

func buildHTTPConfig(c config.ClientConfig) utils.HTTPClientConfig {
	httpConfig := utils.HTTPClientConfig{
		Timeout:   c.Timeout,
		KATimeout: kaTimeout,
		ProxyURL:  c.Proxy,
		UserAgent: c.UserAgent,
		Headers:   c.Headers,
	}
	if httpConfig.UserAgent == "" {
		httpConfig.UserAgent = utils.ToolUserAgent
	}
	// credentials embedded in the proxy URL are sent separately
	if parsedProxy, err := u.Parse(c.Proxy); err == nil && c.Proxy != "" && parsedProxy.User != nil {
		httpConfig.ProxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			httpConfig.ProxyPassword = password
		}
		parsedProxy.User = nil
		httpConfig.ProxyURL = parsedProxy.String()
	}
	return httpConfig
}

// newBackendClient returns a client carrying the persisted admin session.
func newBackendClient() (*backend.Client, *utils.HTTPClient) {
	httpClient := utils.NewHTTPClient(globalHTTPConfig)
	if state.Session != "" {
		httpClient.SetCookie(utils.SessionCookieName, state.Session)
	}
	return backend.NewClient(cfg.Server, httpClient), httpClient
}

func saveState() {
	if err := config.SaveState(config.DefaultStatePath(), state); err != nil {
		output.PrintWarning(fmt.Sprintf("Could not save session state: %v", err))
	}
}

func exitOnError(msg string, err error) {
	log.Debug().Str("op", "cmd/root").Err(err).Msg(msg)
	output.PrintError(fmt.Sprintf("%s: %v", msg, err))
	os.Exit(1)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "playlist-dl server URL (default "+config.DefaultServer+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Timeout for regular requests (eg. 30s, 5m); event streams never time out")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", "", "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., user:pass@proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&fileLog, "log-file", false, "Write JSON logs to "+utils.LogFile)

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSetPathCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCookieCmd())
	rootCmd.AddCommand(newCleanCmd())
}
