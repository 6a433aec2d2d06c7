// Package validation checks file arguments before a run touches them.
package validation

import (
	"os"
	"path/filepath"

	"pepedou/budget-nanny/internal/reconerror"
)

// Stdout is the output path that means "write to standard output".
const Stdout = "-"

// InputFile checks that path names an existing regular file.
func InputFile(path string) error {
	if path == "" {
		return &reconerror.ValidationError{FilePath: path, Reason: "no input file given"}
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &reconerror.ValidationError{FilePath: path, Reason: "file does not exist"}
	}
	if err != nil {
		return &reconerror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return &reconerror.ValidationError{FilePath: path, Reason: "not a regular file"}
	}
	return nil
}

// OutputFile checks that path can be written without clobbering input.
// Stdout is always valid.
func OutputFile(path, input string) error {
	if path == Stdout {
		return nil
	}
	if path == "" {
		return &reconerror.ValidationError{FilePath: path, Reason: "no output file given"}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return &reconerror.ValidationError{FilePath: path, Reason: "output is a directory"}
	}
	if sameFile(path, input) {
		return &reconerror.ValidationError{FilePath: path, Reason: "output would overwrite the input file"}
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
