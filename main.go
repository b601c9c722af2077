package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var verbose bool
	var reasoning bool

	rootCmd := &cobra.Command{
		Use:           "riskbot INPUT_CSV OUTPUT_CSV COLUMN",
		Short:         "Classify data-sensitivity risk of named items with a local LLM",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassification(args[0], args[1], args[2], verbose, reasoning)
		},
	}

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each identifier and the raw model reply")
	rootCmd.Flags().BoolVar(&reasoning, "reasoning", false, "Prompt the model for a step-by-step reasoning trace")

	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

func runClassification(inputPath, outputPath, column string, verbose, reasoning bool) error {
	cfg := LoadConfig()
	cfg.Verbose = verbose
	if reasoning {
		cfg.Reasoning = true
	}

	schema, err := cfg.ResolveSchema()
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.DBPath != "" {
		db, err = InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("init run history db: %w", err)
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule != "" {
		return RunScheduled(ctx, cfg, schema, db, inputPath, outputPath, column)
	}

	summary, err := RunPipeline(ctx, cfg, schema, db, inputPath, outputPath, column)
	if err != nil {
		return err
	}
	log.Print(FormatRunSummary(summary))
	NotifyRunComplete(cfg, summary, outputPath)
	return nil
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show summaries of recent classification runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig()
			if cfg.DBPath == "" {
				return fmt.Errorf("run history requires db_path to be configured")
			}
			db, err := InitDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := RunHistory(db, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}
			for _, s := range runs {
				fmt.Printf("%s  %s\n", s.StartedAt.Local().Format("2006-01-02 15:04"), FormatRunSummary(s))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("riskbot: %v", err)
	}
}
