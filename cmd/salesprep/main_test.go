// Package main provides tests for the salesprep CLI.
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/salesprep/internal/cli"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cli.ExecuteCommand(context.Background(), cmd)
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "salesprep")
}

func TestHelpCommand(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"generate", "clean", "publish", "runs", "serve", "summary", "init"} {
		assert.Contains(t, out, sub)
	}
}

func TestGenerateThenClean(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--project-dir", dir, "--output", "json", "generate", "--seed", "7")
	require.NoError(t, err)
	for _, name := range []string{dataset.CustomersFile, dataset.ProductsFile, dataset.OrdersFile} {
		assert.FileExists(t, filepath.Join(dir, "data", "raw", name))
	}

	_, err = execute(t, "--project-dir", dir, "--output", "json", "clean")
	require.NoError(t, err)

	records, err := dataset.ReadSales(filepath.Join(dir, "data", "cleaned", dataset.SalesFile))
	require.NoError(t, err)
	assert.NotEmpty(t, records)
	assert.Less(t, len(records), 1000)

	log, err := os.ReadFile(filepath.Join(dir, "data", "cleaning_log.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "Data cleaning process completed successfully.")
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	assert.Error(t, err)
}
