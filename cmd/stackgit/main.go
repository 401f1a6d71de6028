package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/pkg/common/logger"
)

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	CommitSHA = "unknown"
)

var (
	logLevel  string
	logFormat string
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "stackgit",
		Short:   "StackGit - git plumbing for patch-stack tooling",
		Long:    getBanner(),
		Version: fmt.Sprintf("%s (built: %s, commit: %s)", Version, BuildTime, CommitSHA),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (sets log level to debug)")

	rootCmd.AddCommand(newIDCmd())
	rootCmd.AddCommand(newCatCmd())
	rootCmd.AddCommand(newRefsCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newMergeBaseCmd())
	rootCmd.AddCommand(newSubmodulesCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newRepackCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getBanner() string {
	return `
   ███████╗████████╗ █████╗  ██████╗██╗  ██╗
   ██╔════╝╚══██╔══╝██╔══██╗██╔════╝██║ ██╔╝
   ███████╗   ██║   ███████║██║     █████╔╝
   ╚════██║   ██║   ██╔══██║██║     ██╔═██╗
   ███████║   ██║   ██║  ██║╚██████╗██║  ██╗
   ╚══════╝   ╚═╝   ╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝

    ██████╗ ██╗████████╗
   ██╔════╝ ██║╚══██╔══╝
   ██║  ███╗██║   ██║
   ██║   ██║██║   ██║
   ╚██████╔╝██║   ██║
    ╚═════╝ ╚═╝   ╚═╝

  🔩 Git plumbing access for patch-stack tooling

  📦 Streaming object and diff channels
  ⚡ Compare-and-swap ref transactions
  🔧 Scratch-index apply and merge
  💻 Built on the git you already have

  Resolve a revision: stackgit id HEAD~2
  Diff two trees:     stackgit diff v1.0 HEAD
  Need help? Run:     stackgit --help

`
}

func setupLogging() {
	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	} else {
		switch logLevel {
		case "debug":
			level = logger.LevelDebug
		case "info":
			level = logger.LevelInfo
		case "warn":
			level = logger.LevelWarn
		case "error":
			level = logger.LevelError
		}
	}

	format := logger.FormatText
	if logFormat == "json" {
		format = logger.FormatJSON
	}

	logger.Default = logger.New(logger.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}
