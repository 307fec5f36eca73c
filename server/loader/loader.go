package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nStangl/stophash/util"
	"go.uber.org/multierr"
	"golang.org/x/exp/mmap"
)

type Format string

const (
	JSON  Format = "json"
	CSV   Format = "csv"
	Words Format = "words"
)

var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrMissingColumn = errors.New("column missing")
	ErrEmptyInput    = errors.New("input empty")
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, CSV, Words:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from the file extension,
// anything unknown is read as a word list
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".csv":
		return CSV
	default:
		return Words
	}
}

// Load reads all the stop records in path, in file order
func Load(path string, format Format) ([]Stop, error) {
	switch format {
	case JSON:
		return loadJSON(path)
	case CSV:
		return loadCSV(path)
	case Words:
		return loadWords(path)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Synthetic generates n records keyed by random UUIDs
func Synthetic(n int) []Stop {
	stops := make([]Stop, n)

	for i := range stops {
		stops[i] = Stop{Code: uuid.NewString(), Name: fmt.Sprintf("synthetic stop %d", i)}
	}

	return stops
}

// Validate drops the records that cannot be used as table entries.
// The returned error combines one error per dropped record.
func Validate(stops []Stop) ([]Stop, error) {
	var (
		err   error
		valid = make([]Stop, 0, len(stops))
	)

	for i, s := range stops {
		if s.Code == "" {
			err = multierr.Append(err, fmt.Errorf("record %d %s: %w", i, s, ErrMissingCode))
			continue
		}

		valid = append(valid, s)
	}

	return valid, err
}

func loadJSON(path string) ([]Stop, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %s: %w", path, err)
	}

	defer r.Close()

	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}

	b := make([]byte, r.Len())
	if _, err := r.ReadAt(b, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read mmap'ed %s: %w", path, err)
	}

	var stops []Stop
	if err := json.Unmarshal(b, &stops); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return stops, nil
}

func loadCSV(path string) ([]Stop, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %s: %w", path, err)
	}

	defer r.Close()

	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}

	cr := csv.NewReader(io.NewSectionReader(r, 0, int64(r.Len())))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	code, name := -1, -1

	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "code":
			code = i
		case "name":
			name = i
		}
	}

	if code < 0 || name < 0 {
		return nil, fmt.Errorf("%w: %s needs code and name, has %v", ErrMissingColumn, path, header)
	}

	var stops []Stop

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		stops = append(stops, Stop{Code: rec[code], Name: rec[name]})
	}

	return stops, nil
}

func loadWords(path string) ([]Stop, error) {
	words, err := util.ReadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read words from %s: %w", path, err)
	}

	stops := make([]Stop, len(words))
	for i, w := range words {
		stops[i] = Stop{Code: w, Name: w}
	}

	return stops, nil
}
