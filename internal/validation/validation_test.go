package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"pepedou/budget-nanny/internal/reconerror"
	"pepedou/budget-nanny/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "bank.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("account,date,payee,outflow,inflow\n"), 0600))

	tests := []struct {
		name        string
		path        string
		errContains string
	}{
		{name: "Existing file", path: testFile},
		{name: "Empty path", path: "", errContains: "no input file"},
		{name: "Missing file", path: filepath.Join(tmpDir, "missing.csv"), errContains: "does not exist"},
		{name: "Directory", path: tmpDir, errContains: "not a regular file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.InputFile(tt.path)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *reconerror.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Reason, tt.errContains)
		})
	}
}

func TestOutputFile(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "bank.csv")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0600))

	tests := []struct {
		name        string
		path        string
		errContains string
	}{
		{name: "Stdout", path: validation.Stdout},
		{name: "New file", path: filepath.Join(tmpDir, "out", "import.csv")},
		{name: "Empty path", path: "", errContains: "no output file"},
		{name: "Directory", path: tmpDir, errContains: "is a directory"},
		{name: "Same as input", path: input, errContains: "overwrite the input"},
		{name: "Same as input, relative spelling", path: filepath.Join(tmpDir, ".", "bank.csv"), errContains: "overwrite the input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.OutputFile(tt.path, input)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
