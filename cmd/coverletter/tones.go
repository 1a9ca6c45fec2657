package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/coverletter/internal/model"
)

var tonesCmd = &cobra.Command{
	Use:   "tones",
	Short: "List the available letter tones",
	Args:  cobra.NoArgs,
	RunE:  runTones,
}

func init() {
	rootCmd.AddCommand(tonesCmd)
}

func runTones(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-15s %-15s %s\n", "Tone", "Label", "Default")
	fmt.Fprintln(out, strings.Repeat("─", 39))
	for _, t := range model.Tones {
		mark := ""
		if t == cfg.Defaults.Tone {
			mark = "*"
		}
		fmt.Fprintf(out, "%-15s %-15s %s\n", t, t.Label(), mark)
	}
	return nil
}
