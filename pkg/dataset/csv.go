package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadCSV parses a header-first flat file into a Frame.
func ReadCSV(r io.Reader) (Frame, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, fmt.Errorf("read header: empty file")
		}
		return Frame{}, fmt.Errorf("read header: %w", err)
	}

	var rows [][]Value
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Frame{}, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		row := make([]Value, len(rec))
		for i, cell := range rec {
			row[i] = Parse(cell)
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}

// WriteCSV writes the frame header-first. Missing values are written empty.
func WriteCSV(w io.Writer, f Frame) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(f.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(f.columns))
	for _, r := range f.rows {
		for j, v := range r {
			rec[j] = v.String()
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// LoadFile reads a CSV file into a Frame.
func LoadFile(path string) (Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return Frame{}, err
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// SaveFile writes the frame to path, creating parent directories and
// overwriting any existing file.
func SaveFile(path string, f Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
