package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/turtacn/ChemReconcile/internal/application/reconcile"
	"github.com/turtacn/ChemReconcile/internal/domain/record"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 15, 4, 5, 0, time.UTC)
}

func sampleReport() *reconcile.Report {
	group := 1
	return &reconcile.Report{
		RunID: "test-run",
		Mode:  record.ModeFullValidation,
		Verdicts: []record.Verdict{
			{
				RowNumber: 1, Name: "Acetone", CAS: "67-64-1", SMILES: "CC(=O)C",
				SMILESSource: record.SMILESSourceInput,
				CIDByName:    "180", CIDByCAS: "180", CIDBySMILES: "180",
				ValidatedCID: "180", ValidatedInChIKey: "CSCPPACGZOOCGX-UHFFFAOYSA-N",
				CanonicalKey14: "CSCPPACGZOOCGX",
				Status:         record.StatusValidated,
			},
			{
				RowNumber: 2, Name: "Acetone", CAS: "67-64-1", SMILES: "CC(=O)C",
				Status:          record.StatusRejected,
				RejectionReason: record.ReasonExactDuplicate,
				ExactDuplicateGroup: &group,
			},
		},
		Validated: 1,
		Rejected:  1,
	}
}

func TestReportStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Chemicals.csv", "my_chemicals"},
		{"/data/Input List.xlsx", "input_list"},
		{"validation_results_input_20260825_150405.xlsx", "validation_results_input"},
		{"plain.csv", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reportStem(tt.in), "stem of %q", tt.in)
	}
}

func TestWriterCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, FormatCSV)
	w.now = fixedClock

	outPath, err := w.Write(sampleReport(), "My Chemicals.csv")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "validation_results_my_chemicals_20260825_150405.csv"), outPath)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, reportColumns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "validated", rows[1][14])
	assert.Equal(t, "exact_duplicate", rows[2][15])
	assert.Equal(t, "1", rows[2][17])
	// Nil group renders empty, not zero.
	assert.Equal(t, "", rows[1][17])
}

func TestWriterXLSX(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, FormatXLSX)
	w.now = fixedClock

	outPath, err := w.Write(sampleReport(), "input.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "validation_results_input_20260825_150405.xlsx"), outPath)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "row_number", rows[0][0])
	assert.Equal(t, "Acetone", rows[1][1])
	assert.Equal(t, "rejected", rows[2][14])
}

func TestWriterAutoFolder(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	w := NewWriter(FolderAuto, FormatCSV)
	w.now = fixedClock

	outPath, err := w.Write(sampleReport(), "input.csv")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("output", "input", "validation_results_input_20260825_150405.csv"), outPath)
	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}
