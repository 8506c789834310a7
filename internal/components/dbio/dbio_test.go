package dbio

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"greenrun/internal/component"
	"greenrun/internal/dict"
)

// sharedMemoryDB opens the same in-memory sqlite database across
// connections within a test via a named DSN, so setup and the component
// under test see the same data.
func sharedMemoryDB(t *testing.T) string {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	setup, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { setup.Close() })

	_, err = setup.Exec(`CREATE TABLE loans (loan_number TEXT, borrower_name TEXT)`)
	require.NoError(t, err)
	_, err = setup.Exec(`INSERT INTO loans (loan_number, borrower_name) VALUES ('1000001', 'SMITH, JOHN A')`)
	require.NoError(t, err)
	return dsn
}

func TestReadReturnsFirstRow(t *testing.T) {
	dsn := sharedMemoryDB(t)
	d := New()
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"provider": "sqlite", "dsn": dsn,
		"query": "SELECT borrower_name FROM loans WHERE loan_number = '1000001'",
	}}
	res, err := d.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusSuccess, res.Status)
	assert.Equal(t, "SMITH, JOHN A", res.OutputData["borrower_name"])
}

func TestReadNoRowsReturnsNoRowsReturned(t *testing.T) {
	dsn := sharedMemoryDB(t)
	d := New()
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"provider": "sqlite", "dsn": dsn,
		"query": "SELECT borrower_name FROM loans WHERE loan_number = '9999999'",
	}}
	res, err := d.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "NO_ROWS_RETURNED", res.Err.Code)
}

func TestUnsupportedProviderIsRejected(t *testing.T) {
	d := New()
	cfg := component.Configuration{ConfigBlob: map[string]any{"provider": "postgres", "query": "SELECT 1"}}
	res, err := d.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusFailure, res.Status)
	assert.Equal(t, "UNSUPPORTED_PROVIDER", res.Err.Code)
}

func TestWriteExecutesStatement(t *testing.T) {
	dsn := sharedMemoryDB(t)
	d := New()
	cfg := component.Configuration{ConfigBlob: map[string]any{
		"provider": "sqlite", "dsn": dsn, "mode": "write",
		"query": "UPDATE loans SET borrower_name = 'DOE, JANE M' WHERE loan_number = '1000001'",
	}}
	res, err := d.Execute(context.Background(), cfg, dict.New())
	require.NoError(t, err)
	require.Equal(t, component.StatusSuccess, res.Status)
}
