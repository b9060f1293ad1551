// Package changelog produces textual diffs of script edits and records them
// as immutable history entries.
package changelog

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between two script bodies. An empty oldBody
// yields a pure-insertion diff (the creation case); identical bodies yield
// an empty diff, which is still recorded so the comment carries intent.
func Diff(oldLabel, newLabel, oldBody, newBody string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldBody),
		B:        difflib.SplitLines(newBody),
		FromFile: oldLabel,
		ToFile:   newLabel,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("generate diff: %w", err)
	}
	return text, nil
}
