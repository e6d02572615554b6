package latex

import "strings"

// escaper replaces every LaTeX special character in one left-to-right pass,
// so the backslashes it introduces are never escaped again.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// Escape makes s safe to place in LaTeX body text.
func Escape(s string) string { return escaper.Replace(s) }

// EscapeAll escapes each element of ss into a new slice.
func EscapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = Escape(s)
	}
	return out
}
