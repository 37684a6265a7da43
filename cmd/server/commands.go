package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mewoai/mewoai/internal/app"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func syncCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-commands",
		Short: "Register the slash commands with the guild and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateDiscord(); err != nil {
				return err
			}
			p, err := openPlatform(cmd.Context(), nil, false)
			if err != nil {
				return err
			}
			defer p.close()
			return syncCommands(cmd.Context(), p.session)
		},
	}
}

func sweepCommand() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Release members whose warning punishment has lapsed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateDiscord(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Role changes go through REST, so no gateway is needed.
			p, err := openPlatform(ctx, nil, false)
			if err != nil {
				return err
			}
			defer p.close()

			if !once {
				p.services.Sweeper.Run(ctx)
				return nil
			}
			released, err := p.services.Sweeper.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released %d member(s)\n", released)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and exit")
	return cmd
}

func attendanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attendance",
		Short: "Take attendance in the venue channel now and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateDiscord(); err != nil {
				return err
			}
			p, err := openPlatform(cmd.Context(), nil, true)
			if err != nil {
				return err
			}
			defer p.close()

			report, err := p.services.Attendance.Process(cmd.Context())
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
}

func printReport(w io.Writer, report *attendance.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tSTATUS\tABSENCES\tXP")
	for _, e := range report.Entries {
		name := e.DisplayName
		if name == "" {
			name = e.UserID
		}
		status := e.Label
		if e.Error != "" {
			status += " (not saved)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", name, status, e.TotalAbsences, e.XP)
	}
	fmt.Fprintf(tw, "\n%d present, %d excused, %d absent, %d warned, %d failed\n",
		report.Present, report.Excused, report.Absent, report.Escalated, report.Failed)
	return tw.Flush()
}

func mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateDiscord(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := openPlatform(ctx, nil, true)
			if err != nil {
				return err
			}
			defer p.close()

			logger.Info("starting stdio transport", "auth", "disabled")
			server := app.NewMCPServer(p.services, cfg, "stdio", version, logger.With("component", "mcp"))
			// Run blocks until stdin closes or ctx is cancelled.
			if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return fmt.Errorf("stdio server: %w", err)
			}
			return nil
		},
	}
}
