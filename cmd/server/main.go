package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/web"
	"github.com/nStangl/stophash/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.0.1"

var (
	cfg     web.Config
	rootCmd = &cobra.Command{
		Use:     "server [loglevel]",
		Short:   "Serve lookups from a probing hash table of stop records",
		Long:    "Loads stop records into a fixed-capacity linear probing hash table and answers get, collisions, stats and dump requests over TCP.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if unparsed := util.ExtractUnknownArgs(cmd.Flags(), args); len(unparsed) == 1 {
				cfg.Loglevel = unparsed[0]
			}

			util.SetLogLevel(cfg.Loglevel, os.Stderr)

			// Load the stops before accepting anyone
			store, err := web.NewStore(&cfg)
			if err != nil {
				return fmt.Errorf("failed to create store: %w", err)
			}

			s, err := web.NewPublicServer(&cfg, store)
			if err != nil {
				return fmt.Errorf("failed to create new public server: %w", err)
			}

			ts, err := s.Server()
			if err != nil {
				return fmt.Errorf("failed to create new public TCP server: %w", err)
			}

			done, ers := ts.Serve()

			log.WithField("server", s.ID()).Infof("serving lookups on %s", ts.Addr())

			go func() {
				for err := range ers {
					log.Errorf("error from public server: %v", err)
				}
			}()

			// Catch the interrupts (ctrl+c)
			quit := make(chan os.Signal, 1)

			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-quit

				log.Info("server about to close")

				if err := ts.Close(); err != nil {
					log.Errorf("error closing public server: %v", err)
				}
			}()

			<-done

			return nil
		},
	}
)

func init() {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)

	f := rootCmd.PersistentFlags()

	f.IntVarP(&cfg.Port, "port", "p", 8080, "Sets the port of the server")
	f.StringVarP(&cfg.Address, "address", "a", "127.0.0.1", "Which address the server should listen to")
	f.StringVarP(&cfg.Input, "input", "i", "stops.json", "File with the stop records (json, csv or one key per line)")
	f.StringVarP(&cfg.Format, "format", "f", "", "Format of the input file, guessed from the extension if empty")
	f.IntVarP(&cfg.Capacity, "capacity", "n", 5003, "Number of slots of the hash table")
	f.BoolVar(&cfg.Prime, "prime", false, "Round the capacity up to the next prime")
	f.StringVar(&cfg.Hasher, "hasher", hashtable.DefaultHasher, "Hash function, one of "+strings.Join(hashtable.HasherNames(), ", "))
	f.StringVar(&cfg.Duplicates, "duplicates", hashtable.ProbePast.String(), "What to do with repeated keys, probe_past or reject")
	f.IntVar(&cfg.MaxConns, "max-conns", 64, "Clients served at once, 0 for no limit")
	f.StringVarP(&cfg.Loglevel, "loglevel", "l", "INFO", "Loglevel, e.g., INFO, ALL, . . .")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
