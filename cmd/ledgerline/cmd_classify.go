package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/ledgerline/internal/classifier"
	"github.com/user/ledgerline/internal/ledger"
	"github.com/user/ledgerline/internal/logger"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <message...>",
	Short: "Classify one message and print the result, without persisting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logger.New(cfg.LogLevel)

	text := strings.Join(args, " ")
	today := time.Now().Format("2006-01-02")

	var result ledger.Result
	if cfg.Gemini.APIKey != "" {
		gemini, err := classifier.New(cmd.Context(), cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return fmt.Errorf("create classifier: %w", err)
		}
		result = gemini.Classify(cmd.Context(), text, today)
	} else if entry := ledger.Parse(text); entry != nil {
		if entry.Date == "" {
			entry.Date = today
		}
		result = ledger.Result{Intent: ledger.IntentBookkeeping, Entry: entry, Reply: "(deterministic parse)"}
	} else {
		return errors.New("no gemini api key configured and the message does not match the grammar")
	}

	fmt.Fprintf(os.Stdout, "intent: %s\n", result.Intent)
	if result.Entry != nil {
		fmt.Fprintf(os.Stdout, "entry:  %s %s %v %s\n",
			result.Entry.Date, result.Entry.Category, result.Entry.Amount, result.Entry.Memo)
	}
	fmt.Fprintf(os.Stdout, "reply:  %s\n", result.Reply)
	return nil
}
