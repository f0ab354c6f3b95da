package dataset

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrEmptyTable is returned when the input has no header row.
	ErrEmptyTable = errors.New("dataset has no header row")
	// ErrNotNumeric is returned when a numeric column was requested but the
	// loaded column holds text.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrUnknownColumn is returned for a column name the table does not carry.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoRows is returned when only a header row is present.
	ErrNoRows = errors.New("dataset has no data rows")
)

// missingValues are the tokens loaded as missing cells.
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// LoadOptions controls how a file is read into a Table.
type LoadOptions struct {
	// Delimiter for CSV. If 0, sniffs from the file extension.
	Delimiter rune
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// Table is the in-memory dataset shared by every analysis step. Column names
// are normalized once on load and never change afterwards.
type Table struct {
	Name string
	df   dataframe.DataFrame
}

// Load reads a CSV/TSV or XLSX file into a Table. Files with an unknown
// extension are read as delimited text.
func Load(path string, opt LoadOptions) (*Table, error) {
	records, err := readerFor(path).Read(path, opt)
	if err != nil {
		return nil, err
	}
	t, err := FromRecords(records)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// FromRecords builds a Table from a header row followed by data rows.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrEmptyTable
	}
	if len(records) < 2 {
		return nil, ErrNoRows
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeName(h)
	}
	ncol := len(header)
	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, rec := range records[1:] {
		// pad short rows, drop trailing extras
		row := make([]string, ncol)
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		rows = append(rows, row)
	}
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// NormalizeName trims a header, replaces every space with an underscore and
// lower-cases the result.
func NormalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}

// Columns returns the normalized column names in file order.
func (t *Table) Columns() []string { return t.df.Names() }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.df.Nrow() }

// Kind returns the inferred type of a column: int, float, string or bool.
func (t *Table) Kind(col string) string {
	for i, name := range t.df.Names() {
		if name == col {
			return string(t.df.Types()[i])
		}
	}
	return ""
}

// Numeric returns the int and float columns in file order.
func (t *Table) Numeric() []string {
	var out []string
	types := t.df.Types()
	for i, name := range t.df.Names() {
		if types[i] == series.Int || types[i] == series.Float {
			out = append(out, name)
		}
	}
	return out
}

// Floats returns the non-missing values of a numeric column.
func (t *Table) Floats(col string) ([]float64, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Column returns every value of a numeric column with missing cells as NaN,
// keeping row alignment with other columns.
func (t *Table) Column(col string) ([]float64, error) {
	if !t.has(col) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	s := t.df.Col(col)
	if s.Type() != series.Int && s.Type() != series.Float {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotNumeric, col, s.Type())
	}
	return s.Float(), nil
}

// Strings returns the values of any column as text, with missing cells as "".
func (t *Table) Strings(col string) ([]string, error) {
	if !t.has(col) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	s := t.df.Col(col)
	recs := s.Records()
	nan := s.IsNaN()
	for i := range recs {
		if nan[i] {
			recs[i] = ""
		}
	}
	return recs, nil
}

func (t *Table) has(col string) bool {
	for _, name := range t.df.Names() {
		if name == col {
			return true
		}
	}
	return false
}
