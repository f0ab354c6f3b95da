package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupported indicates a file format the loader cannot read.
var ErrUnsupported = errors.New("unsupported dataset format")

// Reader turns a file into a header row followed by data rows.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt LoadOptions) ([][]string, error)
}

var registry []Reader

// Register adds a reader implementation to the registry. Later registrations
// are consulted first.
func Register(r Reader) {
	registry = append([]Reader{r}, registry...)
}

func readerFor(path string) Reader {
	for _, r := range registry {
		if r.CanRead(path) {
			return r
		}
	}
	return csvReader{}
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(legacyXLSReader{})
}

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvReader) Read(path string, opt LoadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	var out [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, ErrEmptyTable
	}
	// strip a UTF-8 BOM left by spreadsheet exports
	out[0][0] = strings.TrimPrefix(out[0][0], "\ufeff")
	return out, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxReader) Read(path string, opt LoadOptions) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.SheetName, filepath.Base(path), strings.Join(sheets, ", "))
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheet(s)",
				idx, filepath.Base(path), len(sheets))
		}
		target = sheets[idx-1]
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	return rows, nil
}

type legacyXLSReader struct{}

func (legacyXLSReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xls")
}

func (legacyXLSReader) Read(path string, _ LoadOptions) ([][]string, error) {
	return nil, fmt.Errorf("%w: %s (legacy .xls; save it as .xlsx)", ErrUnsupported, filepath.Base(path))
}
