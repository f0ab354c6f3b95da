package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSVNormalizesHeaders(t *testing.T) {
	p := writeFile(t, "retail.csv", "\ufeffTotal Sales, Region ,Product Category,Units\n100,North,A,1\n200,South,B,2\n150,North,A,3\n")
	tbl, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "retail.csv", tbl.Name)
	assert.Equal(t, []string{"total_sales", "region", "product_category", "units"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []string{"total_sales", "units"}, tbl.Numeric())

	sales, err := tbl.Floats("total_sales")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 150}, sales)

	regions, err := tbl.Strings("region")
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South", "North"}, regions)
}

func TestLoadTSVSniffsDelimiter(t *testing.T) {
	p := writeFile(t, "data.tsv", "Revenue\tArea\n10.5\tEast\n20.25\tWest\n")
	tbl, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"revenue", "area"}, tbl.Columns())
	assert.Equal(t, "float", tbl.Kind("revenue"))
}

func TestLoadExplicitDelimiter(t *testing.T) {
	p := writeFile(t, "data.txt", "sales;units\n1;2\n3;4\n")
	tbl, err := Load(p, LoadOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "units"}, tbl.Columns())
}

func TestMissingCellsStayAligned(t *testing.T) {
	p := writeFile(t, "gaps.csv", "sales,region\n100,North\nNA,South\n300,\n")
	tbl, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	col, err := tbl.Column("sales")
	require.NoError(t, err)
	require.Len(t, col, 3)
	assert.True(t, math.IsNaN(col[1]))

	vals, err := tbl.Floats("sales")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 300}, vals)

	regions, err := tbl.Strings("region")
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South", ""}, regions)
}

func TestColumnErrors(t *testing.T) {
	tbl, err := FromRecords([][]string{{"sales", "region"}, {"1", "North"}, {"2", "South"}})
	require.NoError(t, err)

	_, err = tbl.Column("region")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = tbl.Floats("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = tbl.Strings("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFromRecordsPadsShortRows(t *testing.T) {
	tbl, err := FromRecords([][]string{{"sales", "units"}, {"1"}, {"2", "3", "extra"}})
	require.NoError(t, err)
	units, err := tbl.Column("units")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(units[0]))
	assert.Equal(t, 3.0, units[1])
}

func TestLoadEmpty(t *testing.T) {
	p := writeFile(t, "empty.csv", "")
	_, err := Load(p, LoadOptions{})
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = FromRecords(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = FromRecords([][]string{{"sales"}})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	assert.Error(t, err)
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Sales Amount", "Region"},
		{120, "North"},
		{80, "South"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	_, err := f.NewSheet("Summary")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Summary", "A1", &[]interface{}{"Note"}))
	require.NoError(t, f.SetSheetRow("Summary", "A2", &[]interface{}{"ok"}))

	p := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestLoadXLSX(t *testing.T) {
	p := writeWorkbook(t)

	tbl, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sales_amount", "region"}, tbl.Columns())
	sales, err := tbl.Floats("sales_amount")
	require.NoError(t, err)
	assert.Equal(t, []float64{120, 80}, sales)

	tbl, err = Load(p, LoadOptions{SheetName: "summary"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, tbl.Columns())
}

func TestLoadXLSXSheetErrors(t *testing.T) {
	p := writeWorkbook(t)

	_, err := Load(p, LoadOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: Sheet1, Summary")

	_, err = Load(p, LoadOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestDetectFirstMatchInColumnOrder(t *testing.T) {
	cols := []string{"date", "product_category", "sales_region", "total_sales", "area"}
	r, err := Detect(cols, DefaultKeywords())
	require.NoError(t, err)
	// "sales_region" contains "sale" and comes before "total_sales"
	assert.Equal(t, "sales_region", r.Sales)
	assert.Equal(t, "sales_region", r.Region)
	assert.Equal(t, "product_category", r.Product)
}

func TestDetectCaseInsensitive(t *testing.T) {
	r, err := Detect([]string{"SALES_USD", "Category"}, DefaultKeywords())
	require.NoError(t, err)
	assert.Equal(t, "SALES_USD", r.Sales)
	assert.Equal(t, "", r.Region)
	assert.Equal(t, "Category", r.Product)
}

func TestDetectNoSales(t *testing.T) {
	_, err := Detect([]string{"date", "region", "units"}, DefaultKeywords())
	assert.ErrorIs(t, err, ErrNoSalesColumn)
}

func TestDetectCustomKeywords(t *testing.T) {
	kw := Keywords{Sales: []string{"amount"}, Region: []string{"store"}}
	r, err := Detect([]string{"store_id", "amount"}, kw)
	require.NoError(t, err)
	assert.Equal(t, "amount", r.Sales)
	assert.Equal(t, "store_id", r.Region)
	assert.Equal(t, "", r.Product)
}

func TestLoadLegacyXLSUnsupported(t *testing.T) {
	p := writeFile(t, "old.xls", "binary")
	_, err := Load(p, LoadOptions{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReaderSelection(t *testing.T) {
	assert.IsType(t, xlsxReader{}, readerFor("Book.XLSX"))
	assert.IsType(t, csvReader{}, readerFor("sales.tsv"))
	assert.IsType(t, csvReader{}, readerFor("sales.dat"))
}
