package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/server/hashtable"
	"github.com/nStangl/stophash/server/loader"
	"github.com/nStangl/stophash/server/memtable"
	"github.com/nStangl/stophash/util"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Phases of a run, in order
const (
	Idle     = "idle"
	Loaded   = "loaded"
	Inserted = "inserted"
	Searched = "searched"
	Compared = "compared"
	Reported = "reported"

	LoadEvent    = "load"
	InsertEvent  = "insert"
	SearchEvent  = "search"
	CompareEvent = "compare"
	ReportEvent  = "report"
)

var events = []string{LoadEvent, InsertEvent, SearchEvent, CompareEvent, ReportEvent}

// Runner loads a set of stop records, inserts them into a
// probing table, looks every one of them up again and times
// the same workload against the baseline containers.
type Runner struct {
	cfg     Config
	out     io.Writer
	logger  *log.Entry
	machine *fsm.FSM
	stops   []loader.Stop
	table   *hashtable.Table
	report  Report
}

func NewRunner(cfg Config, out io.Writer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()

	r := Runner{
		cfg:    cfg,
		out:    out,
		logger: log.WithField("run", id),
		report: Report{RunID: id, Hasher: cfg.Hasher, Duplicates: cfg.Duplicates},
	}

	r.machine = fsm.NewFSM(
		Idle,
		fsm.Events{
			{Name: LoadEvent, Src: []string{Idle}, Dst: Loaded},
			{Name: InsertEvent, Src: []string{Loaded}, Dst: Inserted},
			{Name: SearchEvent, Src: []string{Inserted}, Dst: Searched},
			{Name: CompareEvent, Src: []string{Searched}, Dst: Compared},
			{Name: ReportEvent, Src: []string{Compared}, Dst: Reported},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				r.logger.Debugf("run moved from %s to %s", e.Src, e.Dst)
			},
			// Phases run before their transition, so a failing one
			// leaves the run in the phase it started from
			"before_" + LoadEvent:    r.onLoad,
			"before_" + InsertEvent:  r.onInsert,
			"before_" + SearchEvent:  r.onSearch,
			"before_" + CompareEvent: r.onCompare,
			"before_" + ReportEvent:  r.onReport,
		},
	)

	return &r, nil
}

func (r *Runner) ID() uuid.UUID { return r.report.RunID }

// Phase is the last phase the run reached
func (r *Runner) Phase() string { return r.machine.Current() }

// Table is nil before the insert phase
func (r *Runner) Table() *hashtable.Table { return r.table }

// Run walks all phases and stops at the first one that fails
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.machine.Event(ctx, e); err != nil {
			var canceled fsm.CanceledError
			if errors.As(err, &canceled) && canceled.Err != nil {
				err = canceled.Err
			}

			return nil, fmt.Errorf("%s phase failed: %w", e, err)
		}
	}

	return &r.report, nil
}

func (r *Runner) onLoad(_ context.Context, e *fsm.Event) {
	var (
		stops []loader.Stop
		err   error
	)

	if r.cfg.Input != "" {
		f, ferr := r.cfg.InputFormat()
		if ferr != nil {
			e.Cancel(ferr)
			return
		}

		if stops, err = loader.Load(r.cfg.Input, f); err != nil {
			e.Cancel(err)
			return
		}
	}

	if r.cfg.Synthetic > 0 {
		stops = append(stops, loader.Synthetic(r.cfg.Synthetic)...)
	}

	r.report.Processed = len(stops)

	valid, err := loader.Validate(stops)
	for _, err := range multierr.Errors(err) {
		r.logger.Debugf("skipping record: %v", err)
	}

	r.stops = valid
	r.report.Skipped = len(stops) - len(valid)

	r.logger.WithFields(log.Fields{
		"records": len(stops),
		"skipped": r.report.Skipped,
	}).Info("loaded stop records")
}

func (r *Runner) onInsert(_ context.Context, e *fsm.Event) {
	options, err := hashtable.Options(r.cfg.Hasher, r.cfg.Duplicates)
	if err != nil {
		e.Cancel(err)
		return
	}

	t, err := hashtable.New(hashtable.Capacity(r.cfg.Capacity, r.cfg.Prime), options...)
	if err != nil {
		e.Cancel(err)
		return
	}

	start := time.Now()

	for _, s := range r.stops {
		ok, err := t.Insert(s.Code, s.Name)
		if err != nil {
			r.logger.Debugf("failed to insert %s: %v", s, err)
		}

		if ok {
			r.report.Inserted++
		} else {
			r.report.Failed++
		}
	}

	r.report.InsertElapsed = time.Since(start)
	r.report.Capacity = t.Capacity()
	r.report.Collisions = t.Collisions()
	r.report.LoadFactor = t.LoadFactor()
	r.table = t

	r.logger.WithFields(log.Fields{
		"inserted":   r.report.Inserted,
		"failed":     r.report.Failed,
		"collisions": r.report.Collisions,
		"elapsed":    r.report.InsertElapsed,
	}).Info("inserted stop records")
}

func (r *Runner) onSearch(_ context.Context, e *fsm.Event) {
	r.report.LookupTimes = make([]float64, 0, len(r.stops))

	for _, s := range r.stops {
		start := time.Now()
		_, ok := r.table.Search(s.Code)
		d := time.Since(start)

		r.report.LookupTimes = append(r.report.LookupTimes, float64(d.Nanoseconds()))

		if ok {
			r.report.Hits++
		} else {
			r.report.Misses++
		}
	}

	r.report.SampleKey = r.cfg.SampleKey
	r.report.Sample = data.NotFound()

	if v, ok := r.table.Search(r.cfg.SampleKey); ok {
		r.report.Sample = data.Found(v)
	}

	// The window is clamped so a small table still gets a dump
	start := util.Min(r.cfg.DumpStart, r.table.Capacity())
	limit := util.Max(0, util.Min(r.cfg.DumpLimit, r.table.Capacity()-start))

	slots, err := r.table.Dump(start, limit)
	if err != nil {
		e.Cancel(err)
		return
	}

	r.report.DumpStart = start
	r.report.Dump = slots

	r.logger.WithFields(log.Fields{
		"hits":   r.report.Hits,
		"misses": r.report.Misses,
		"sample": r.report.Sample,
	}).Info("looked up stop records")
}

func (r *Runner) onCompare(_ context.Context, e *fsm.Event) {
	newProbing := func() (*memtable.Probing, error) {
		options, err := hashtable.Options(r.cfg.Hasher, r.cfg.Duplicates)
		if err != nil {
			return nil, err
		}

		return memtable.NewProbing(hashtable.Capacity(r.cfg.Capacity, r.cfg.Prime), options...)
	}

	for _, name := range r.cfg.ContainerNames() {
		factory, err := memtable.FactoryFor(name, newProbing)
		if err != nil {
			e.Cancel(err)
			return
		}

		b := Baseline{Name: name}

		for i := 0; i < r.cfg.Rounds; i++ {
			t, err := factory()
			if err != nil {
				e.Cancel(fmt.Errorf("failed to create %s: %w", name, err))
				return
			}

			start := time.Now()

			for _, s := range r.stops {
				if err := t.Set(s.Code, s.Name); err != nil {
					b.Failures++
				}
			}

			b.Attempts = append(b.Attempts, time.Since(start))
		}

		r.report.Baselines = append(r.report.Baselines, b)

		r.logger.WithFields(log.Fields{
			"container": name,
			"mean":      b.Mean(),
			"failures":  b.Failures,
		}).Info("timed container")
	}
}

func (r *Runner) onReport(_ context.Context, e *fsm.Event) {
	if err := r.report.Print(r.out, r.cfg.Bins); err != nil {
		e.Cancel(fmt.Errorf("failed to print report: %w", err))
		return
	}

	if r.cfg.CSVOutput == "" {
		return
	}

	if err := util.WriteCSV(r.cfg.CSVOutput, r.report.Rows()); err != nil {
		e.Cancel(fmt.Errorf("failed to write %s: %w", r.cfg.CSVOutput, err))
		return
	}

	r.logger.Infof("wrote timings to %s", r.cfg.CSVOutput)
}
