package core

// table.go reads delimited text exports into a header-addressed table.
//
// Exports from the registration system are frequently saved by Excel, so the
// reader strips a UTF-8 BOM and replaces invalid UTF-8 before parsing. Every
// field, header names included, is trimmed of surrounding whitespace.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV file: header names and trimmed records.
type Table struct {
	Columns []string
	Records [][]string
	lines   []int
	index   map[string]int
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the field of record i in the named column.
func (t *Table) Value(i int, column string) string {
	pos, ok := t.index[column]
	if !ok || pos >= len(t.Records[i]) {
		return ""
	}
	return t.Records[i][pos]
}

// Line returns the 1-based file line record i starts on.
func (t *Table) Line(i int) int {
	return t.lines[i]
}

// RequireColumns checks that every column exists, in order.
// The first absent column is reported as a *MissingColumnError.
func (t *Table) RequireColumns(source string, columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &MissingColumnError{Source: source, Column: c}
		}
	}
	return nil
}

// ReadTable parses r as comma-separated text with a header row.
// An empty input yields a table with no columns.
func ReadTable(source string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{index: map[string]int{}}, nil
	}
	if err != nil {
		return nil, &FormatError{Source: source, Err: err}
	}

	t := &Table{
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Columns[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Source: source, Err: err}
		}
		line, _ := reader.FieldPos(0)
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		t.Records = append(t.Records, record)
		t.lines = append(t.lines, line)
	}

	return t, nil
}
