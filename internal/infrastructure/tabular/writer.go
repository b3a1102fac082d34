package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/ChemReconcile/internal/application/reconcile"
	"github.com/turtacn/ChemReconcile/internal/domain/record"
	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// Output formats accepted by the Writer.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// FolderAuto places the report under output/<input-stem>/ instead of the
// working directory.
const FolderAuto = "auto"

const sheetName = "Validation Results"

// reportColumns is the fixed column order of the result report.  Consumers
// key on these header names; never reorder.
var reportColumns = []string{
	"row_number",
	"name",
	"cas",
	"smiles",
	"smiles_source",
	"cid_by_name",
	"cid_by_cas",
	"cid_by_smiles",
	"inchikey_by_name",
	"inchikey_by_cas",
	"inchikey_by_smiles",
	"validated_cid",
	"validated_inchikey",
	"validated_canonical_inchikey_14",
	"status",
	"rejection_reason",
	"pubchem_error",
	"exact_duplicate_group",
	"stereo_duplicate_group",
}

// reTimestampSuffix strips a previous run's timestamp from an input stem so
// re-validating a report does not stack suffixes.
var reTimestampSuffix = regexp.MustCompile(`_\d{8}_\d{6}$`)

// Writer renders a run report next to the input it came from.
type Writer struct {
	// Folder selects the output directory: "" for the working directory,
	// FolderAuto for output/<stem>/, anything else as a literal path.
	Folder string

	// Format is FormatXLSX (default) or FormatCSV.
	Format string

	// now is swappable for deterministic test filenames.
	now func() time.Time
}

// NewWriter constructs a Writer with the given folder mode and format.
func NewWriter(folder, format string) *Writer {
	if format == "" {
		format = FormatXLSX
	}
	return &Writer{Folder: folder, Format: format, now: time.Now}
}

// Write renders the report for inputPath and returns the path of the file it
// created.
func (w *Writer) Write(report *reconcile.Report, inputPath string) (string, error) {
	stem := reportStem(inputPath)
	timestamp := w.now().Format("20060102_150405")
	filename := fmt.Sprintf("validation_results_%s_%s.%s", stem, timestamp, w.Format)

	dir, err := w.outputDir(stem)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(dir, filename)

	rows := make([][]string, 0, len(report.Verdicts))
	for _, v := range report.Verdicts {
		rows = append(rows, verdictRow(v))
	}

	switch w.Format {
	case FormatCSV:
		err = writeCSV(outPath, rows)
	default:
		err = writeXLSX(outPath, rows)
	}
	if err != nil {
		return "", err
	}
	return outPath, nil
}

func (w *Writer) outputDir(stem string) (string, error) {
	switch w.Folder {
	case "":
		return ".", nil
	case FolderAuto:
		dir := filepath.Join("output", stem)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeReportWrite, "failed to create output directory")
		}
		return dir, nil
	default:
		if err := os.MkdirAll(w.Folder, 0o755); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeReportWrite, "failed to create output directory")
		}
		return w.Folder, nil
	}
}

// reportStem derives the report name fragment from the input filename:
// lowercased, spaces to underscores, any previous report timestamp removed.
func reportStem(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.ReplaceAll(strings.ToLower(stem), " ", "_")
	return reTimestampSuffix.ReplaceAllString(stem, "")
}

// verdictRow flattens one verdict into the fixed column order.
func verdictRow(v record.Verdict) []string {
	return []string{
		fmt.Sprintf("%d", v.RowNumber),
		v.Name,
		v.CAS,
		v.SMILES,
		string(v.SMILESSource),
		v.CIDByName,
		v.CIDByCAS,
		v.CIDBySMILES,
		v.InChIKeyByName,
		v.InChIKeyByCAS,
		v.InChIKeyBySMILES,
		v.ValidatedCID,
		v.ValidatedInChIKey,
		v.CanonicalKey14,
		string(v.Status),
		string(v.RejectionReason),
		v.PubChemError,
		groupCell(v.ExactDuplicateGroup),
		groupCell(v.StereoDuplicateGroup),
	}
}

func groupCell(g *int) string {
	if g == nil {
		return ""
	}
	return fmt.Sprintf("%d", *g)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to create report file")
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(reportColumns); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to write report header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to write report row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to flush report")
	}
	return nil
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to create report sheet")
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	widths := make([]int, len(reportColumns))
	writeRow := func(rowIdx int, cells []string) error {
		for colIdx, cell := range cells {
			ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheetName, ref, cell); err != nil {
				return err
			}
			if len(cell) > widths[colIdx] {
				widths[colIdx] = len(cell)
			}
		}
		return nil
	}

	if err := writeRow(1, reportColumns); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to write report header")
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to write report row")
		}
	}

	// Filterable headers and content-fit column widths, capped so a long
	// diagnostic does not blow the sheet out.
	lastCol, err := excelize.ColumnNumberToName(len(reportColumns))
	if err == nil {
		rangeRef := fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1)
		_ = f.AutoFilter(sheetName, rangeRef, nil)
	}
	for i := range reportColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		width := widths[i] + 2
		if width > 50 {
			width = 50
		}
		_ = f.SetColWidth(sheetName, col, col, float64(width))
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWrite, "failed to save report")
	}
	return nil
}
