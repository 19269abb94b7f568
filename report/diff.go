package report

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff between a golden rendering and an actual one,
// or an empty string when they match.
func Diff(expected, actual []byte, name string) (string, error) {
	if string(expected) == string(actual) {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: name + " (expected)",
		ToFile:   name + " (actual)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
