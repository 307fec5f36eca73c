package bench

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/google/uuid"
	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/server/hashtable"
)

const histogramWidth = 40

type (
	// Everything a run measured
	Report struct {
		RunID      uuid.UUID
		Hasher     string
		Duplicates string
		Capacity   int

		Processed  int
		Skipped    int
		Inserted   int
		Failed     int
		Collisions int
		LoadFactor float64

		InsertElapsed time.Duration

		SampleKey string
		Sample    data.Result

		DumpStart int
		Dump      []hashtable.Slot

		Hits   int
		Misses int

		// Per lookup, in nanoseconds
		LookupTimes []float64

		Baselines []Baseline
	}

	// Timings of inserting all records into one container
	Baseline struct {
		Name     string
		Attempts []time.Duration
		Failures int
	}
)

func (b Baseline) Mean() time.Duration {
	if len(b.Attempts) == 0 {
		return 0
	}

	var sum time.Duration
	for _, a := range b.Attempts {
		sum += a
	}

	return sum / time.Duration(len(b.Attempts))
}

func (r *Report) Print(w io.Writer, bins int) error {
	p := printer{w: w}

	p.printf("run %s hasher=%s duplicates=%s capacity=%d\n", r.RunID, r.Hasher, r.Duplicates, r.Capacity)
	p.printf("elapsed ns = %d\n", r.InsertElapsed.Nanoseconds())
	p.printf("stops_processed = %d\n", r.Processed)
	p.printf("stops_skipped = %d\n", r.Skipped)
	p.printf("successful_inserts = %d\n", r.Inserted)
	p.printf("failed_inserts = %d\n", r.Failed)
	p.printf("collisions = %d\n", r.Collisions)
	p.printf("load_factor = %.4f\n", r.LoadFactor)

	p.printf("slots [%d, %d):\n", r.DumpStart, r.DumpStart+len(r.Dump))
	for i, s := range r.Dump {
		p.printf("%6d %s\n", r.DumpStart+i, s)
	}

	if r.Sample.Kind == data.Present {
		p.printf("stop %s = %s\n", r.SampleKey, r.Sample.Value)
	} else {
		p.printf("stop %s not found\n", r.SampleKey)
	}

	p.printf("lookups hits=%d misses=%d\n", r.Hits, r.Misses)

	for _, b := range r.Baselines {
		p.printf("%s average time (ns) %d failures=%d\n", b.Name, b.Mean().Nanoseconds(), b.Failures)
		p.printf("attempts (ns) %v\n", nanos(b.Attempts))
	}

	if p.err != nil {
		return p.err
	}

	if len(r.LookupTimes) == 0 {
		return nil
	}

	p.printf("lookup times (ns)\n")

	if p.err != nil {
		return p.err
	}

	return histogram.Fprint(w, histogram.Hist(bins, r.LookupTimes), histogram.Linear(histogramWidth))
}

// Rows lays the container timings out for a CSV file
func (r *Report) Rows() [][]string {
	rows := [][]string{{"run", "container", "round", "ns", "failures"}}

	for _, b := range r.Baselines {
		for i, a := range b.Attempts {
			rows = append(rows, []string{
				r.RunID.String(),
				b.Name,
				strconv.Itoa(i + 1),
				strconv.FormatInt(a.Nanoseconds(), 10),
				strconv.Itoa(b.Failures),
			})
		}
	}

	return rows
}

func nanos(ds []time.Duration) []int64 {
	ns := make([]int64, len(ds))
	for i, d := range ds {
		ns[i] = d.Nanoseconds()
	}

	return ns
}

// Remembers the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
