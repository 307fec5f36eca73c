package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nStangl/stophash/server/bench"
	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/memtable"
	"github.com/nStangl/stophash/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.0.1"

var (
	cfg        = bench.DefaultConfig()
	configPath string
	rootCmd    = &cobra.Command{
		Use:     "benchmark [loglevel]",
		Short:   "Insert stop records into a probing hash table and time it",
		Long:    "Loads stop records, inserts them into a fixed-capacity linear probing hash table, looks every one of them up again and compares the insert time with other containers.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cmd.SilenceUsage = true

			if configPath != "" {
				if err := util.OverrideWith(cmd.Flags(), func() error {
					return cfg.DecodeFile(configPath)
				}); err != nil {
					return err
				}
			}

			if unparsed := util.ExtractUnknownArgs(cmd.Flags(), args); len(unparsed) == 1 {
				cfg.Loglevel = unparsed[0]
			}

			util.SetLogLevel(cfg.Loglevel, os.Stderr)

			r, err := bench.NewRunner(cfg, os.Stdout)
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			log.WithField("run", r.ID()).Info("starting benchmark")

			if _, err := r.Run(ctx); err != nil {
				return fmt.Errorf("benchmark stopped in phase %s: %w", r.Phase(), err)
			}

			return nil
		},
	}
)

func init() {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stderr)

	f := rootCmd.Flags()

	f.StringVarP(&configPath, "config", "c", "", "TOML file with benchmark settings, flags given explicitly take precedence")
	f.StringVarP(&cfg.Input, "input", "i", cfg.Input, "File with the stop records (json, csv or one key per line)")
	f.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Format of the input file, guessed from the extension if empty")
	f.IntVarP(&cfg.Synthetic, "synthetic", "s", cfg.Synthetic, "Number of random records to add to the input")
	f.IntVarP(&cfg.Capacity, "capacity", "n", cfg.Capacity, "Number of slots of the hash table")
	f.BoolVar(&cfg.Prime, "prime", cfg.Prime, "Round the capacity up to the next prime")
	f.StringVar(&cfg.Hasher, "hasher", cfg.Hasher, "Hash function, one of "+strings.Join(hashtable.HasherNames(), ", "))
	f.StringVar(&cfg.Duplicates, "duplicates", cfg.Duplicates, "What to do with repeated keys, probe_past or reject")
	f.IntVarP(&cfg.Rounds, "rounds", "r", cfg.Rounds, "How often each container is timed")
	f.StringVar(&cfg.Containers, "containers", cfg.Containers, "Comma separated containers to time, of "+strings.Join(memtable.Names, ", "))
	f.StringVarP(&cfg.SampleKey, "key", "k", cfg.SampleKey, "Key looked up and printed after inserting")
	f.IntVar(&cfg.DumpStart, "dump-start", cfg.DumpStart, "First slot to print")
	f.IntVar(&cfg.DumpLimit, "dump-limit", cfg.DumpLimit, "Number of slots to print")
	f.IntVar(&cfg.Bins, "bins", cfg.Bins, "Bins of the lookup time histogram")
	f.StringVarP(&cfg.CSVOutput, "csv", "o", cfg.CSVOutput, "Write the container timings to this CSV file")
	f.StringVarP(&cfg.Loglevel, "loglevel", "l", cfg.Loglevel, "Loglevel, e.g., INFO, ALL, . . .")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
