package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		var typed *errors.Error
		if verbose && stderrors.As(err, &typed) {
			fmt.Fprint(os.Stderr, typed.DetailedString())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logging.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "git-timeline",
	Short: "Reconstruct a project's feature and tooling timeline from git history",
	Long: `git-timeline walks recent commits and infers, without trusting commit
messages, which business features were built and which tooling was adopted
on each day.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize logger
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = logging.DEBUG
		}
		if err := logging.Initialize(logging.Config{
			Level:      level,
			OutputFile: cfg.Logging.File,
			JSONFormat: cfg.Logging.JSON,
		}); err != nil {
			logger.WithError(err).Warn("Failed to initialize structured logging")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .git-timeline/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`git-timeline {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(configCmd)
}
