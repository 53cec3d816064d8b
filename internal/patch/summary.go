package patch

import "strings"

// Summarize renders one line per operation: the uppercased op code followed
// by the encoded path, e.g. "REPLACE /a/x". Pure over well-formed patches;
// validate first if the patch crossed a trust boundary.
func Summarize(p Patch) []string {
	lines := make([]string, 0, len(p))
	for _, op := range p {
		lines = append(lines, strings.ToUpper(string(op.Op))+" "+op.Path)
	}
	return lines
}
