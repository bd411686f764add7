package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/waybill/internal/config"
	"github.com/zulandar/waybill/internal/notify"
	"github.com/zulandar/waybill/internal/scheduler"
	"github.com/zulandar/waybill/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Waybill API server",
		Long:  "Serves the REST API, with the optional order-generation scheduler and chat notifications from the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Waybill config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := buildHub(cfg)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(st, cfg.Scheduler.Cron)
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		go sched.Run(ctx)
	}

	return server.Start(ctx, server.StartOpts{
		Store: st,
		Port:  port,
		Hub:   hub,
		Out:   cmd.OutOrStdout(),
	})
}

// buildHub wires the notifiers that have tokens configured. A notifier
// that fails to construct is logged and skipped.
func buildHub(cfg *config.Config) *notify.Hub {
	var notifiers []notify.Notifier
	if cfg.Notify.Discord.Token != "" {
		d, err := notify.NewDiscord(notify.DiscordOpts{
			BotToken:  cfg.Notify.Discord.Token,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			log.Printf("serve: discord notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, d)
		}
	}
	if cfg.Notify.Slack.Token != "" {
		s, err := notify.NewSlack(notify.SlackOpts{
			BotToken:  cfg.Notify.Slack.Token,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			log.Printf("serve: slack notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, s)
		}
	}
	return notify.NewHub(notifiers...)
}
