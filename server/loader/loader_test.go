package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func write(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadJSON(t *testing.T) {
	path := write(t, "stops.json", `[
		{"code": "10036", "name": "Central Station", "lat": 28.54},
		{"code": 10037, "name": "Church St"},
		{"name": "No Code"},
		{"code": null, "name": 42}
	]`)

	stops, err := Load(path, JSON)
	require.NoError(t, err)

	assert.Equal(t, []Stop{
		{Code: "10036", Name: "Central Station"},
		{Code: "10037", Name: "Church St"},
		{Code: "", Name: "No Code"},
		{Code: "", Name: "42"},
	}, stops)
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := Load(write(t, "bad.json", `[{"code": true}]`), JSON)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = Load(write(t, "bad.json", `{"code": "1"}`), JSON)
	assert.Error(t, err)

	_, err = Load(write(t, "empty.json", ``), JSON)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), JSON)
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := write(t, "stops.csv", "id,Name,code\n1, Central Station,10036\n2,Church St,10037\n")

	stops, err := Load(path, CSV)
	require.NoError(t, err)

	assert.Equal(t, []Stop{
		{Code: "10036", Name: "Central Station"},
		{Code: "10037", Name: "Church St"},
	}, stops)

	_, err = Load(write(t, "nocode.csv", "id,name\n1,x\n"), CSV)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadWords(t *testing.T) {
	stops, err := Load(write(t, "words.txt", "alpha\nbeta\n"), Words)
	require.NoError(t, err)

	assert.Equal(t, []Stop{{Code: "alpha", Name: "alpha"}, {Code: "beta", Name: "beta"}}, stops)
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load("whatever", Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, JSON, FormatFromPath("data/stops.JSON"))
	assert.Equal(t, CSV, FormatFromPath("stops.csv"))
	assert.Equal(t, Words, FormatFromPath("words.txt"))
}

func TestSynthetic(t *testing.T) {
	stops := Synthetic(100)
	require.Len(t, stops, 100)

	seen := make(map[string]bool)
	for _, s := range stops {
		_, err := uuid.Parse(s.Code)
		require.NoError(t, err)
		assert.False(t, seen[s.Code])
		seen[s.Code] = true
	}
}

func TestValidate(t *testing.T) {
	valid, err := Validate([]Stop{
		{Code: "1", Name: "a"},
		{Code: "", Name: "b"},
		{Code: "3", Name: "c"},
		{Code: "", Name: "d"},
	})

	assert.Equal(t, []Stop{{Code: "1", Name: "a"}, {Code: "3", Name: "c"}}, valid)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.ErrorIs(t, e, ErrMissingCode)
	}

	valid, err = Validate([]Stop{{Code: "1"}})
	assert.NoError(t, err)
	assert.Len(t, valid, 1)
}
