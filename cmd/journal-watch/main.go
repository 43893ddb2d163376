package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"journal-watch/journal"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := journal.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}

	runner, err := journal.NewRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if cmd.Bool("once") {
		return runner.RunOnce(ctx)
	}

	interval := cmd.Duration("poll-interval")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := runner.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cmd := &cli.Command{
		Name:   "journal-watch",
		Usage:  "Poll the world journal feed, deduplicate events, and deliver channel notifications and daily finance reports",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("JW_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run one batch and exit (crontab mode)",
				Value: true,
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Delay between batches when not running with --once",
				Value: 15 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logs",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatalf("journal-watch: %v", err)
	}
}
