package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/salesprep/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:    "init empty directory",
			args:    []string{},
			wantErr: false,
			wantFiles: []string{
				"salesprep.yaml",
				"data/raw",
				"data/cleaned",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "salesprep.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "salesprep.yaml"), []byte("existing"), 0600)
			},
			args:    []string{"--force"},
			wantErr: false,
			wantFiles: []string{
				"salesprep.yaml",
				"data/raw",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{tmpDir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "salesprep project initialized!")

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.False(t, os.IsNotExist(err), "expected file/dir %q to exist", f)
			}
		})
	}
}

func TestInitCreatesSubdirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-project")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	assert.DirExists(t, filepath.Join(dir, "data", "cleaned"))
}

func TestInitCreatesLoadableConfig(t *testing.T) {
	dir := t.TempDir()

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(filepath.Join(dir, "salesprep.yaml"))
	require.NoError(t, err)
	for _, expected := range []string{"raw_dir: data/raw", "cleaned_dir: data/cleaned", "state_path:", "seed:"} {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}

	cfg, err := config.Load(filepath.Join(dir, "salesprep.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "raw"), cfg.RawDir)
	want := config.Default().Generate
	assert.Equal(t, want.Customers, cfg.Generate.Customers)
	assert.True(t, want.StartDate.Equal(cfg.Generate.StartDate), "start date %s", cfg.Generate.StartDate)
}

func TestInitJSONOutput(t *testing.T) {
	dir := t.TempDir()

	cmd := NewInitCommand()
	cmd.Flags().String("output", "json", "")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	var res initResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, dir, res.Dir)
	assert.Equal(t, []string{"salesprep.yaml", "data/raw/", "data/cleaned/"}, res.Created)
}
