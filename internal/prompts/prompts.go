// Package prompts holds the embedded prompt templates for mail analysis and
// vendor comparison.
package prompts

import (
	_ "embed"
)

//go:embed analyze.md
var Analyze string

//go:embed compare_single.md
var CompareSingle string

//go:embed compare_multi.md
var CompareMulti string
