// Package excel reads contingency tables from spreadsheet files. Both
// .xlsx (first sheet) and .csv layouts are supported: the header row
// carries the column categories, each following row starts with its row
// category and continues with the observed counts.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chi2ind/domain/crosstab"
	"chi2ind/internal"
	"chi2ind/internal/errors"

	"github.com/xuri/excelize/v2"
)

// CrosstabReader handles reading crosstab files into contingency tables
type CrosstabReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewCrosstabReader creates a reader for the given file, picking the
// format from the extension.
func NewCrosstabReader(filePath string) *CrosstabReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &CrosstabReader{
		filePath: filePath,
		fileType: fileType,
		log:      internal.NewDefaultLogger(),
	}
}

// Read loads the file and builds a contingency table from it
func (r *CrosstabReader) Read() (*crosstab.Table, error) {
	r.log.Debug("reading %s crosstab file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInputf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, errors.InvalidInputf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	table, err := parseCrosstab(rows)
	if err != nil {
		return nil, err
	}
	r.log.Info("loaded %dx%d contingency table from %s", table.NumRows(), table.NumCols(), r.filePath)
	return table, nil
}

func (r *CrosstabReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInputf("Excel file has no sheets: %s", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	return rows, nil
}

func (r *CrosstabReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", r.filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // shape is validated below
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse CSV file %s", r.filePath)
	}
	return rows, nil
}

// parseCrosstab turns raw rows into a table. The top-left cell is a
// label and ignored; everything else must be dense.
func parseCrosstab(rows [][]string) (*crosstab.Table, error) {
	if len(rows) < 3 {
		return nil, errors.InvalidInput("crosstab file needs a header row and at least two data rows")
	}

	header := rows[0]
	if len(header) < 3 {
		return nil, errors.InvalidInput("crosstab file needs at least two column categories")
	}
	colCats := make([]string, 0, len(header)-1)
	for _, cell := range header[1:] {
		name := strings.TrimSpace(cell)
		if name == "" {
			return nil, errors.InvalidInput("blank column category in header row")
		}
		colCats = append(colCats, name)
	}

	rowCats := make([]string, 0, len(rows)-1)
	counts := make([][]float64, 0, len(rows)-1)
	for ri, row := range rows[1:] {
		if len(row) != len(colCats)+1 {
			return nil, errors.InvalidInputf("row %d has %d cells, expected %d", ri+2, len(row), len(colCats)+1)
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, errors.InvalidInputf("blank row category in row %d", ri+2)
		}
		rowCats = append(rowCats, name)

		rowCounts := make([]float64, len(colCats))
		for ci, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("cell (%s, %s) is not numeric: %q", name, colCats[ci], cell))
			}
			rowCounts[ci] = v
		}
		counts = append(counts, rowCounts)
	}

	return crosstab.New(rowCats, colCats, counts)
}
