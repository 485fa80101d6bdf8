package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const byteOrderMark = "\ufeff"

// Record is one flat row keyed by header, remembering column order.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord builds a record from alternating key, value pairs.
func NewRecord(kv ...string) Record {
	r := Record{values: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

// Set stores value under key, appending key to the column order the first time it is seen.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the cell under key, or "" when absent.
func (r Record) Get(key string) string {
	return r.values[key]
}

// Lookup returns the cell under key and whether the key exists.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in insertion order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.keys)
}

// Table is the result of parsing delimited text.
type Table struct {
	Headers   []string
	Records   []Record
	Malformed int // ragged rows and rows with repaired quoting
}

// ParseCSV parses comma-separated text with a header line into records.
//
// Quoted fields may hold commas, newlines and doubled quotes. Parsing is lenient:
// stray quotes are kept as text and ragged rows are padded or truncated to the header.
// Empty input yields an empty table.
func ParseCSV(text string) *Table {
	t, err := ReadCSV(strings.NewReader(text))
	if err != nil {
		// strings.Reader never fails
		return &Table{}
	}
	return t
}

// ReadCSV is [ParseCSV] over a stream. Only read errors from r are returned.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	table := &Table{}
	s := &splitter{text: strings.TrimPrefix(string(data), byteOrderMark)}
	for !s.done() {
		cells, lenient := s.next()
		if cells == nil {
			continue
		}
		if table.Headers == nil {
			table.Headers = cells
			continue
		}

		if lenient || len(cells) != len(table.Headers) {
			table.Malformed++
		}
		table.Records = append(table.Records, recordFromCells(table.Headers, cells))
	}
	return table, nil
}

// splitter walks delimited text one record at a time. Carriage returns inside
// quoted fields are kept, so a CRLF inside a cell survives [ToCSV] and back;
// encoding/csv folds them to a bare newline.
type splitter struct {
	text string
	pos  int
}

func (s *splitter) done() bool {
	return s.pos >= len(s.text)
}

func (s *splitter) peek(c byte) bool {
	return s.pos < len(s.text) && s.text[s.pos] == c
}

// next returns the cells of the next record, or nil for a blank line.
// lenient is set when text after a closing quote or an unterminated quote
// had to be kept as is.
func (s *splitter) next() (cells []string, lenient bool) {
	var field strings.Builder
	var quoted, inQuotes, started bool

	for !s.done() {
		c := s.text[s.pos]
		s.pos++

		switch {
		case inQuotes:
			switch {
			case c != '"':
				field.WriteByte(c)
			case s.peek('"'):
				field.WriteByte('"')
				s.pos++
			default:
				inQuotes = false
			}
		case c == '"' && !started:
			quoted, inQuotes, started = true, true, true
		case c == ',':
			cells = append(cells, field.String())
			field.Reset()
			quoted, started = false, false
		case c == '\n', c == '\r' && s.peek('\n'):
			if c == '\r' {
				s.pos++
			}
			if cells == nil && !started {
				return nil, false
			}
			return append(cells, field.String()), lenient
		default:
			if quoted {
				lenient = true
			}
			field.WriteByte(c)
			started = true
		}
	}

	if inQuotes {
		lenient = true
	}
	if cells == nil && !started {
		return nil, false
	}
	return append(cells, field.String()), lenient
}

func recordFromCells(headers, cells []string) Record {
	rec := Record{values: make(map[string]string, len(headers))}
	for i, h := range headers {
		var v string
		if i < len(cells) {
			v = cells[i]
		}
		rec.Set(h, v)
	}
	return rec
}

// ToCSV serializes records with a header line. Columns follow the key order of the first record;
// later records missing a column get an empty cell. Fields holding commas, quotes or newlines are quoted.
func ToCSV(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	headers := records[0].Keys()
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	row := make([]string, len(headers))
	for _, rec := range records {
		for i, h := range headers {
			row[i] = rec.Get(h)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}
