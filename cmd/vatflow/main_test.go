package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
	"github.com/Veraticus/vatflow/internal/storage"
)

const ledgerCSV = `Date,TransID,Account,Aname,Reference,Description,Amount,VAT,Flag,Verified,Status,Notes
2024-01-03,T-1,4000,Sales,INV-1,Consulting,115.00,15.00,,0,Client to Verify,
2024-01-04,T-2,4000,Sales,INV-2,Training,230.00,30.00,,1,Verified,checked
2024-01-05,T-3,5000,Purchases,PO-9,Hardware,57.50,7.50,,2,Not VAT Registered,
`

// execute runs the root command with args against a fresh home directory
// shared by one test.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VATFLOW_DATABASE_PATH", filepath.Join(home, "vatflow.db"))
	t.Setenv("VATFLOW_OWNER_ID", "owner-1")
	t.Setenv("VATFLOW_LOGGING_LEVEL", "error")

	path := filepath.Join(home, "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledgerCSV), 0o600))
	return path
}

func TestImportHistoryReportFlow(t *testing.T) {
	file := setupEnv(t)
	home := filepath.Dir(file)

	out, err := execute(t, "import", file, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Read 3 records from ledger.csv")
	assert.Contains(t, out, "Saved import")

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger.csv")

	out, err = execute(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "Every import is complete")

	out, err = execute(t, "report", "verified", "--format", "xlsx", "-o", home)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 of 3 records)")
	matches, err := filepath.Glob(filepath.Join(home, "verification-report-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	out, err = execute(t, "dashboard", "--window", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "Total records")

	out, err = execute(t, "clear", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 3 records")
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	setupEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,TransID,Account,Amount,VAT\n2024-01-01,T-1,4000,0,0\n"), 0o600))

	out, err := execute(t, "import", bad, "--quiet")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "Import not saved")
	assert.Contains(t, out, "1 record(s) failed validation")

	_, err = execute(t, "validate", bad, "--quiet")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "Validation failed")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    model.VerificationStatus
		wantErr bool
	}{
		{in: "0", want: model.StatusClientToVerify},
		{in: "verified", want: model.StatusVerified},
		{in: " Not VAT Registered ", want: model.StatusNotVATRegistered},
		{in: "3", wantErr: true},
		{in: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vatflow dev\n", out)
}

func TestValidateSaveStoresRun(t *testing.T) {
	file := setupEnv(t)

	out, err := execute(t, "validate", file, "--quiet", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "All 3 records are valid")

	const prefix = "Saved validation run "
	i := strings.Index(out, prefix)
	require.GreaterOrEqual(t, i, 0, out)
	runID := strings.Fields(out[i+len(prefix):])[0]

	ctx := context.Background()
	db, err := storage.Open(ctx, os.Getenv("VATFLOW_DATABASE_PATH"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	outcomes, err := db.SelectValidationRecords(ctx, "owner-1", runID)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "T-1", outcomes[0].TransID)
	for _, o := range outcomes {
		assert.False(t, o.HasError)
	}

	n, err := db.CountRecords(ctx, service.RecordQuery{Owner: "owner-1"})
	require.NoError(t, err)
	assert.Zero(t, n)
}
