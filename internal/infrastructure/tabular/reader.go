// Package tabular reads input tables (CSV or Excel) into the raw-text domain
// model and writes the result report back out.  All cells stay strings: type
// coercion is how CAS numbers turn into dates.
package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/ChemReconcile/internal/domain/record"
	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// ReadFile loads path into a Table, dispatching on the file extension:
// .xlsx / .xlsm go through the spreadsheet reader, .xls is rejected, and
// everything else is parsed as UTF-8 CSV.  The first row becomes the header.
func ReadFile(path string) (*record.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcel(path)
	case ".xls":
		// The legacy binary format has no reader here; letting it fall
		// through to the CSV parser produces a misleading parse error.
		return nil, errors.New(errors.ErrCodeInputRead,
			"legacy .xls format is not supported; save the file as .xlsx or .csv")
	default:
		return readCSV(path)
	}
}

func readExcel(path string) (*record.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputRead, "failed to open spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.ErrCodeInputRead, "spreadsheet has no sheets")
	}

	// Raw cell text, no number or date formatting applied.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputRead, "failed to read sheet rows")
	}
	return tableFromRows(rows)
}

func readCSV(path string) (*record.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInputRead, "failed to open input file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInputRead, "failed to parse csv")
		}
		rows = append(rows, rec)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (*record.Table, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInputRead, "input file is empty")
	}
	header := rows[0]
	if len(header) > 0 {
		// Excel exports often carry a UTF-8 BOM on the first cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &record.Table{Columns: header, Rows: rows[1:]}, nil
}
