package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/coverletter/internal/tui"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Write a cover letter interactively (TUI)",
	Long:  "Walks through the CV, job details and letter steps in the terminal. The final letter is printed on exit.",
	Args:  cobra.NoArgs,
	RunE:  runWizard,
}

var wizardCVFile string

func init() {
	wizardCmd.Flags().StringVar(&wizardCVFile, "cv", "", "prefill the CV step from a PDF, DOCX or TXT file")
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	// Log output while the alt screen is up corrupts the display.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if debug {
		logger = setupLogger(cmd.ErrOrStderr(), true)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, writer, err := setup(ctx, logger)
	if err != nil {
		return err
	}

	var cv string
	if wizardCVFile != "" {
		if cv, err = readDocument(wizardCVFile, logger); err != nil {
			return fmt.Errorf("read CV: %w", err)
		}
	}

	letter, err := tui.RunWizard(ctx, tui.Options{
		Writer:      writer,
		CV:          cv,
		DefaultTone: cfg.Defaults.Tone,
		Timeout:     cfg.Server.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}
	if letter.Body != "" {
		fmt.Fprintln(cmd.OutOrStdout(), letter.Body)
	}
	return nil
}
