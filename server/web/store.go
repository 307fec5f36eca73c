package web

import (
	"fmt"

	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/loader"
	"github.com/nStangl/stophash/server/memtable"
	"github.com/nStangl/stophash/server/store"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// NewStore builds a probing table as configured and
// fills it with the stop records of the input file
func NewStore(cfg *Config) (*store.StoreImpl, error) {
	options, err := hashtable.Options(cfg.Hasher, cfg.Duplicates)
	if err != nil {
		return nil, err
	}

	table, err := memtable.NewProbing(hashtable.Capacity(cfg.Capacity, cfg.Prime), options...)
	if err != nil {
		return nil, err
	}

	format := loader.FormatFromPath(cfg.Input)
	if cfg.Format != "" {
		if format, err = loader.ParseFormat(cfg.Format); err != nil {
			return nil, err
		}
	}

	stops, err := loader.Load(cfg.Input, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load stops: %w", err)
	}

	valid, err := loader.Validate(stops)
	for _, err := range multierr.Errors(err) {
		log.Debugf("skipping record: %v", err)
	}

	s := store.New(table)

	var failed int

	for _, stop := range valid {
		if err := s.Set(stop.Code, stop.Name); err != nil {
			log.Debugf("failed to store %s: %v", stop, err)
			failed++
		}
	}

	log.WithFields(log.Fields{
		"records":    len(stops),
		"stored":     table.Size(),
		"failed":     failed,
		"collisions": table.Table().Collisions(),
	}).Info("loaded stop records into store")

	return s, nil
}
