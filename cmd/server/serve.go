package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mewoai/mewoai/internal/app"
	"github.com/mewoai/mewoai/internal/discord"
	"github.com/mewoai/mewoai/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	gatewayTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the sweeper, and the dashboard (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveRun(cmd)
		},
	}
}

func serveRun(cmd *cobra.Command) error {
	if err := cfg.ValidateDiscord(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	p, err := openPlatform(ctx, m, true)
	if err != nil {
		return err
	}
	defer p.close()

	if cfg.Discord.SyncCommands {
		if err := syncCommands(ctx, p.session); err != nil {
			logger.Error("syncing slash commands failed", "error", err)
		}
	}

	go p.services.Sweeper.Run(ctx)

	handler := app.NewHandler(p.services, cfg, version,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), logger)
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

// platform bundles a Discord session with the services wired over it.
type platform struct {
	session  *discordgo.Session
	services *app.Services
	close    func()
}

// openPlatform opens the store and a Discord session and wires the services.
// With gateway set the bot's event handlers are registered and the call
// blocks until the guild is cached.
func openPlatform(ctx context.Context, m *metrics.Metrics, gateway bool) (*platform, error) {
	store, closeStore, err := app.OpenStore(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	closeAll := func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		closeAll()
		return nil, err
	}
	client := discord.NewClient(session, session.State, cfg.Discord.GuildID, cfg.Discord.Venue, logger.With("component", "discord"))
	services := app.NewServices(store, client, cfg, logger, m)

	if gateway {
		bot := discord.NewBot(session, client, services.Members, logger.With("component", "bot"))
		for _, h := range bot.Handlers(ctx) {
			session.AddHandler(h)
		}

		openCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
		defer cancel()
		if err := discord.Open(openCtx, session, cfg.Discord.GuildID); err != nil {
			closeAll()
			return nil, err
		}
		logger.Info("discord gateway connected", "guild_id", cfg.Discord.GuildID)
		closeStoreOnly := closeAll
		closeAll = func() {
			if err := session.Close(); err != nil {
				logger.Warn("closing discord session failed", "error", err)
			}
			closeStoreOnly()
		}
	}

	return &platform{session: session, services: services, close: closeAll}, nil
}

func syncCommands(ctx context.Context, session *discordgo.Session) error {
	appID := cfg.Discord.AppID
	if appID == "" {
		self, err := session.User("@me", discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("resolving application id: %w", err)
		}
		appID = self.ID
	}
	cmds, err := discord.SyncCommands(ctx, session, appID, cfg.Discord.GuildID)
	if err != nil {
		return err
	}
	logger.Info("slash commands synced", "count", len(cmds))
	return nil
}
