package util

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadWords returns the non-blank lines of the file at path
func ReadWords(path string) ([]string, error) {
	readFile, err := os.Open(path)
	if err != nil {
		return []string{}, err
	}

	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)

	var words []string
	for fileScanner.Scan() {
		if w := strings.TrimSpace(fileScanner.Text()); w != "" {
			words = append(words, w)
		}
	}

	if err := fileScanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	return words, nil
}

func WriteCSV(path string, data [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(data); err != nil {
		return fmt.Errorf("failed to write csv to %s: %w", path, err)
	}

	return f.Sync()
}
