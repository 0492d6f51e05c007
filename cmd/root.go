package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smarterqueue/threads-go/config"
	"github.com/smarterqueue/threads-go/threads"
)

// skipConfig marks commands that run without loading configuration
const skipConfig = "skip-config"

var (
	cfgFile     string
	cfg         *config.Config
	logger      = zerolog.Nop()
	client      *threads.Client
	oauthHelper *threads.OAuthHelper

	appVersion   = "dev"
	appBuildTime = "unknown"

	// Global flags
	accessToken string
	apiVersion  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "threads",
	Short: "A command line client for the Threads Graph API",
	Long: `threads is a CLI for the Threads Graph API. It walks through the OAuth
login flow, exchanges and refreshes access tokens, and issues authenticated
GET and POST calls against any Graph API endpoint.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// SetVersion records the build information reported by the version command
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./threads.yaml)")
	rootCmd.PersistentFlags().StringVar(&accessToken, "access-token", "", "access token, overrides auth.access_token")
	rootCmd.PersistentFlags().StringVar(&apiVersion, "api-version", "", "Graph API version, overrides api.version")
}

// initializeApp loads the configuration and builds the logger and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfig] == "true" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	if cmd.Flags().Changed("access-token") {
		cfg.Auth.AccessToken = accessToken
	}
	if cmd.Flags().Changed("api-version") {
		cfg.API.Version = apiVersion
	}

	client, err = threads.NewClient(cfg.App.ClientID, cfg.App.ClientSecret,
		threads.WithBaseURL(cfg.API.BaseURL),
		threads.WithVersionCode(cfg.API.Version),
		threads.WithAccessToken(cfg.Auth.AccessToken),
		threads.WithTimeout(cfg.API.Timeout),
		threads.WithConnectTimeout(cfg.API.ConnectTimeout),
		threads.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create Threads client: %w", err)
	}

	oauthHelper = threads.NewOAuthHelper(client)

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("version", cfg.API.Version).
		Bool("has_token", cfg.Auth.AccessToken != "").
		Msg("Threads client initialized")

	return nil
}

// setupLogger configures the zerolog logger. Console output is only
// colored when out is a terminal.
func setupLogger(cfg config.LoggingConfig, out *os.File) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	tty := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// printError writes err to w, including the platform fields of API errors
func printError(w io.Writer, err error) {
	var apiErr *threads.Error
	if !errors.As(err, &apiErr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", apiErr.Message)
	if apiErr.Code != 0 {
		fmt.Fprintf(w, "  HTTP status: %d\n", apiErr.Code)
	}
	if apiErr.Type != nil {
		fmt.Fprintf(w, "  Type:        %s\n", *apiErr.Type)
	}
	if apiErr.ErrorCode != nil {
		fmt.Fprintf(w, "  Code:        %d\n", *apiErr.ErrorCode)
	}
	if apiErr.Subcode != nil {
		fmt.Fprintf(w, "  Subcode:     %d\n", *apiErr.Subcode)
	}
	if apiErr.TraceID != nil {
		fmt.Fprintf(w, "  Trace ID:    %s\n", *apiErr.TraceID)
	}
	if apiErr.IsTokenExpired() {
		fmt.Fprintln(w, "  The access token is no longer valid. Run 'threads token refresh' or log in again.")
	}
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
