package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// CSVFiles maps each source table to its file name inside a data directory.
var CSVFiles = map[string]string{
	JobsTable:   JobsTable + ".csv",
	SkillsTable: SkillsTable + ".csv",
	LinksTable:  LinksTable + ".csv",
}

// CSVProvider loads the three source tables from CSV files in Dir.
type CSVProvider struct {
	Dir string
}

// NewCSVProvider creates a provider reading from dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{Dir: dir}
}

// Load reads all three files concurrently.
func (p *CSVProvider) Load(ctx context.Context) (*Raw, error) {
	raw := &Raw{}
	g, ctx := errgroup.WithContext(ctx)

	targets := []struct {
		name string
		dst  **Table
	}{
		{JobsTable, &raw.Jobs},
		{SkillsTable, &raw.Skills},
		{LinksTable, &raw.Links},
	}
	for _, tgt := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := p.readFile(tgt.name)
			if err != nil {
				return err
			}
			*tgt.dst = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

func (p *CSVProvider) readFile(name string) (*Table, error) {
	path := filepath.Join(p.Dir, CSVFiles[name])
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data with a header row into a Table. Empty cells
// become nil; all other cells are kept as strings for the cleaning stage
// to coerce.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Name: name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{Name: name, Columns: make([]string, len(header))}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]any, len(t.Columns))
		for i := range row {
			if i >= len(record) || record[i] == "" {
				continue // short rows pad with missing values
			}
			row[i] = record[i]
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
