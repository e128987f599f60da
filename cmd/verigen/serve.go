package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/scheduler"
	"github.com/amishk599/verigen/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serves the generation pipeline, history, keys and drafts as a JSON API, plus Prometheus metrics on /metrics.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := setupLogger(debug)
	a, err := newApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	logger.Info("config loaded",
		"store", a.cfg.Store.Driver,
		"provider", a.cfg.LLM.Provider,
		"model", a.cfg.LLM.Target().ModelName(),
		"timeout", a.cfg.LLM.Timeout.String(),
		"direct", a.cfg.LLM.Direct,
	)

	if a.cfg.Server.Retention > 0 {
		tasks := []scheduler.Task{scheduler.PruneTask(a.store, a.cfg.Server.Retention, logger)}
		sched := scheduler.NewScheduler(tasks, a.cfg.Server.PruneInterval, logger)
		go func() {
			if err := sched.Run(ctx); err != nil {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	srv := server.New(a.gen, a.sess, a.store, a.cfg.LLM.Target(), a.cfg.LLM.Timeout, logger)
	return srv.Run(ctx, addr)
}
