package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/jobpage"
	"github.com/amishk599/coverletter/internal/model"
	"github.com/amishk599/coverletter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web wizard and JSON API",
	Long:  "Start the HTTP server; blocks until SIGINT/SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stdout, debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, writer, err := setup(ctx, logger)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"max_upload_bytes", cfg.Server.MaxUploadBytes,
		"client_min_interval", cfg.Server.ClientMinInterval.String(),
		"job_import", cfg.JobPage.Enabled,
		"notification", cfg.Notification.Type,
	)

	var jobPages model.JobPageFetcher
	if cfg.JobPage.Enabled {
		jobPages = jobpage.NewFetcher(jobpage.NewClient(cfg.JobPage.Timeout), logger)
	}

	srv := server.New(server.Options{
		Config:      cfg.Server,
		DefaultTone: cfg.Defaults.Tone,
		Writer:      writer,
		Extractor:   extract.New(logger),
		JobPages:    jobPages,
		Logger:      logger,
		RetryDelay:  cfg.Retry.Delay,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
