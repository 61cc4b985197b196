package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/transcription"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yt-transcript",
		Short:         "List, fetch and translate YouTube transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file (overrides environment)")
	flags.Int("delay", -1, "Delay in milliseconds before each YouTube request")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("accept-language", "", "Accept-Language header sent to YouTube")

	// Hidden: point the client at another host
	flags.String("base-url", "", "YouTube base URL")
	_ = flags.MarkHidden("base-url")

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newFetchCmd(),
		newTranslateCmd(),
		newCacheCmd(),
		newArchiveCmd(),
	)
	return root
}

// loadConfig builds the configuration from the environment, the optional
// config file and the persistent flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.LoadConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if delay, _ := cmd.Flags().GetInt("delay"); delay >= 0 {
		cfg.RequestDelayMS = delay
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if lang, _ := cmd.Flags().GetString("accept-language"); lang != "" {
		cfg.AcceptLanguage = lang
	}
	if f := cmd.Flags().Lookup("preserve-formatting"); f != nil && f.Changed {
		cfg.PreserveFormatting, _ = cmd.Flags().GetBool("preserve-formatting")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return cfg, nil
}

// newLogger builds the command logger. Only the server writes log files;
// the other commands log to stderr so stdout carries transcript output.
func newLogger(cmd *cobra.Command, cfg *config.Config, serving bool) (*logrus.Logger, error) {
	opts := logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
	if serving {
		opts.Dir = cfg.LogDir
		opts.Stdout = true
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, err
	}
	if !serving {
		log.SetOutput(cmd.ErrOrStderr())
		if level, _ := cmd.Flags().GetString("log-level"); level == "" {
			log.SetLevel(logrus.WarnLevel)
		}
	}
	return log, nil
}

func newClient(cmd *cobra.Command, cfg *config.Config, log logrus.FieldLogger) *transcription.Client {
	opts := []transcription.Option{
		transcription.WithDelay(cfg.RequestDelay()),
		transcription.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		transcription.WithAcceptLanguage(cfg.AcceptLanguage),
		transcription.WithPreserveFormatting(cfg.PreserveFormatting),
		transcription.WithLogger(log),
	}
	if base, _ := cmd.Flags().GetString("base-url"); base != "" {
		opts = append(opts, transcription.WithBaseURL(base))
	}
	return transcription.NewClient(opts...)
}

// setup is the common preamble of every subcommand.
func setup(cmd *cobra.Command, serving bool) (*config.Config, *logrus.Logger, *transcription.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cmd, cfg, serving)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, newClient(cmd, cfg, log), nil
}
