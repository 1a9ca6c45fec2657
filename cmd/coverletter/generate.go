package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/coverletter/internal/compose"
	"github.com/amishk599/coverletter/internal/jobpage"
	"github.com/amishk599/coverletter/internal/model"
	"github.com/amishk599/coverletter/internal/tui"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write one cover letter and print it",
	Long: "Generate a cover letter from a CV file and a job description given as a file or a job posting URL. " +
		"The letter goes to stdout; the recipient, subject and Gmail link go to stderr.",
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	genCVFile  string
	genJobFile string
	genJobURL  string
	genTone    string
	genOutFile string
	genOpen    bool
)

func init() {
	generateCmd.Flags().StringVar(&genCVFile, "cv", "", "CV file (PDF, DOCX or TXT)")
	generateCmd.Flags().StringVarP(&genJobFile, "job", "j", "", "job description file")
	generateCmd.Flags().StringVarP(&genJobURL, "job-url", "u", "", "job posting URL to import the description from")
	generateCmd.Flags().StringVarP(&genTone, "tone", "t", "", "letter tone: formal, professional, friendly, confident or creative (default from config)")
	generateCmd.Flags().StringVarP(&genOutFile, "out", "o", "", "also write the letter to this file")
	generateCmd.Flags().BoolVar(&genOpen, "open", false, "open the Gmail compose window when done")

	generateCmd.MarkFlagRequired("cv")
	generateCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	generateCmd.MarkFlagsOneRequired("job", "job-url")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	logger := setupLogger(stderr, debug)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, writer, err := setup(ctx, logger)
	if err != nil {
		return err
	}

	cv, err := readDocument(genCVFile, logger)
	if err != nil {
		return fmt.Errorf("read CV: %w", err)
	}

	var jobDescription string
	if genJobURL != "" {
		if !cfg.JobPage.Enabled {
			return errors.New("importing job descriptions from a URL is disabled in the config")
		}
		fetcher := jobpage.NewFetcher(jobpage.NewClient(cfg.JobPage.Timeout), logger)
		if jobDescription, err = fetcher.Fetch(ctx, genJobURL); err != nil {
			return fmt.Errorf("import job description: %w", err)
		}
	} else if jobDescription, err = readDocument(genJobFile, logger); err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	tone := cfg.Defaults.Tone
	if genTone != "" {
		tone = model.ParseTone(genTone)
		if string(tone) != genTone {
			logger.Debug("tone normalized", "requested", genTone, "tone", tone)
		}
	}

	req := model.LetterRequest{CV: cv, JobDescription: jobDescription, Tone: tone}
	if err := req.Validate(); err != nil {
		return err
	}

	write := func(ctx context.Context) (model.Letter, error) {
		return writer.Write(ctx, req)
	}
	var letter model.Letter
	if isTerminal(stderr) {
		letter, err = tui.RunLoader(ctx, stderr, "Writing your "+tone.Label()+" cover letter", write)
	} else {
		letter, err = write(ctx)
	}
	if err != nil {
		return userError(err)
	}

	if genOutFile != "" {
		if err := os.WriteFile(genOutFile, []byte(letter.Body+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", genOutFile, err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), letter.Body)

	draft := compose.DraftFor(letter)
	fmt.Fprintln(stderr)
	if draft.To != "" {
		fmt.Fprintf(stderr, "To:      %s\n", draft.To)
	}
	if draft.Subject != "" {
		fmt.Fprintf(stderr, "Subject: %s\n", draft.Subject)
	}
	fmt.Fprintf(stderr, "Gmail:   %s\n", draft.GmailURL())

	if genOpen {
		if err := tui.OpenURL(draft.GmailURL()); err != nil {
			return fmt.Errorf("open Gmail: %w", err)
		}
	}
	return nil
}
