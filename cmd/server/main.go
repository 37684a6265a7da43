package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mewoai/mewoai/internal/config"
	"github.com/spf13/cobra"
)

const programName = "mewoai"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configFile string
	cfg        config.Config
	logger     *slog.Logger
	closeLog   = func() error { return nil }
)

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Discord community bot with an admin dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveRun(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file (default $MEWOAI_CONFIG_PATH)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// stdout carries JSON-RPC in stdio mode.
		logWriter := io.Writer(os.Stdout)
		if cmd.Name() == "mcp" || cmd.Name() == "attendance" {
			logWriter = os.Stderr
		}
		if logPath := os.Getenv("MEWOAI_LOG_PATH"); logPath != "" {
			fileWriter, file, err := newLogFileWriter(logPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
			} else {
				logWriter = fileWriter
				closeLog = file.Close
			}
		}
		logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Log.Level),
		}))
		return nil
	}
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return closeLog()
	}

	rootCmd.AddCommand(
		serveCommand(),
		syncCommandsCommand(),
		sweepCommand(),
		attendanceCommand(),
		mcpCommand(),
		versionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), programName, version)
		},
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
