package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"PaperTrader/internal/model"
)

// unknownCell is written for a schema column that has no price in a row.
const unknownCell = ""

// CSVStore keeps the history in a CSV file: a header row of instrument names
// followed by one row of prices per snapshot, oldest first.
type CSVStore struct {
	mu     sync.Mutex
	path   string
	policy Policy
	schema []string
}

// OpenCSVStore opens the file at path, creating nothing until the first
// append. An existing file is fully validated.
func OpenCSVStore(path string, policy Policy) (*CSVStore, error) {
	s := &CSVStore{path: path, policy: policy}
	header, rows, err := s.read()
	if err != nil {
		return nil, err
	}
	s.schema = header
	log.Printf("[INFO] csv snapshot store opened: %s (%d columns, %d rows)", path, len(header), len(rows))
	return s, nil
}

func (s *CSVStore) Append(row model.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := reconcile(s.schema, row, s.policy)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	size := info.Size()

	err = writeOrTruncate(f, size, func(w io.Writer) error {
		// files written by other tools may lack the final newline
		if size > 0 {
			last := make([]byte, 1)
			if _, err := f.ReadAt(last, size-1); err != nil {
				return fmt.Errorf("read %s: %w", s.path, err)
			}
			if last[0] != '\n' {
				if _, err := w.Write([]byte{'\n'}); err != nil {
					return fmt.Errorf("write %s: %w", s.path, err)
				}
			}
		}

		cw := csv.NewWriter(w)
		if s.schema == nil {
			if err := cw.Write(out.Names()); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
		}
		record := make([]string, len(out))
		for i, c := range out {
			record[i] = formatCell(c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush %s: %w", s.path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}

	if s.schema == nil {
		s.schema = out.Names()
	}
	return nil
}

// writeOrTruncate runs write against f and cuts f back to size when it
// fails, so a failed append leaves no partial line behind.
func writeOrTruncate(f *os.File, size int64, write func(w io.Writer) error) error {
	err := write(f)
	if err == nil {
		return nil
	}
	if terr := f.Truncate(size); terr != nil {
		log.Printf("[ERROR] truncate %s back to %d bytes: %v", f.Name(), size, terr)
		return errors.Join(err, terr)
	}
	return err
}

func (s *CSVStore) LoadLatest() (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, rows, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[len(rows)-1].Known(), nil
}

func (s *CSVStore) History() ([]model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, rows, err := s.read()
	return rows, err
}

func (s *CSVStore) Schema() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.schema)
}

func (s *CSVStore) Close() error { return nil }

// read parses the whole file. A missing or empty file has no header.
func (s *CSVStore) read() ([]string, []model.Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", s.path, err)
	}
	header = slices.Clone(header)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkNames(header); err != nil {
		return nil, nil, fmt.Errorf("%s header: %w", s.path, err)
	}

	var rows []model.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		line, _ := r.FieldPos(0)
		row := make(model.Row, len(header))
		for i, raw := range record {
			cell, err := parseCell(header[i], raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func formatCell(c model.Cell) string {
	if !c.Price.Valid {
		return unknownCell
	}
	return c.Price.Decimal.StringFixed(2)
}

func parseCell(name, raw string) (model.Cell, error) {
	raw = strings.TrimSpace(raw)
	if raw == unknownCell {
		return model.Cell{Name: name}, nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Cell{}, fmt.Errorf("column %q: invalid price %q", name, raw)
	}
	return model.Cell{Name: name, Price: decimal.NewNullDecimal(p)}, nil
}
