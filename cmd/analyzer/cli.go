package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/web-analyzer-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type cli struct {
	envFile  string
	logLevel string
	jsonOut  bool

	app *app
}

func newCLI() *cli {
	return &cli{}
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Analyze the most frequent words of web pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Env file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	cmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print results as JSON")

	cmd.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.refreshCmd(),
		c.analyzeCmd(),
		c.historyCmd(),
		c.versionCmd(),
	)
	return cmd
}

// setup loads configuration and builds the application. Commands that talk
// to the service use it as their PreRunE.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	logger := c.newLogger(cmd.ErrOrStderr(), cfg)
	log.Logger = logger

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.close()
}

func (c *cli) newLogger(w io.Writer, cfg config.Config) zerolog.Logger {
	levelName := c.logLevel
	if levelName == "" {
		levelName = cfg.GetLogLevel()
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Str("app", cfg.GetAppName()).
		Logger()
}

// emit prints v as indented JSON when --json is set, otherwise runs text.
func (c *cli) emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if c.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(cmd.OutOrStdout())
	return nil
}

// readSecret returns value, or reads one line from the command's input when
// value is empty.
func readSecret(cmd *cobra.Command, name, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && f == os.Stdin {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", name)
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return line, nil
}
