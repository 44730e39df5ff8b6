package mediatool

import (
	"path/filepath"
	"strings"
)

// ffmpeg parses a filter description in up to three passes, and each pass has
// its own reserved characters. Text destined for drawtext passes through all
// three; a file name given to the subtitles filter passes through the last two.

// drawtextEscapes is drawtext's text expansion: '\' quotes the next character
// and '%' opens a %{...} expansion. Line breaks are flattened so a single
// caption never spills into a second drawtext line.
var drawtextEscapes = map[rune]string{
	'\\': `\\`,
	'%':  `\%`,
	'\n': " ",
	'\r': " ",
	'\t': " ",
}

// optionEscapes is the filter option parser: ':' separates key=value pairs,
// '\'' quotes and '\' escapes.
var optionEscapes = map[rune]string{
	'\\': `\\`,
	'\'': `\'`,
	':':  `\:`,
}

// graphEscapes is the filtergraph parser: '[' and ']' delimit link labels,
// ',' separates filters in a chain, ';' separates chains, '\'' quotes and
// '\' escapes. Characters not listed here ('"', '=', '#', non-ASCII) pass
// through unchanged.
var graphEscapes = map[rune]string{
	'\\': `\\`,
	'\'': `\'`,
	'[':  `\[`,
	']':  `\]`,
	',':  `\,`,
	';':  `\;`,
}

func escapeWith(s string, table map[rune]string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if rep, ok := table[r]; ok {
			sb.WriteString(rep)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// EscapeDrawtext escapes for drawtext's own text expansion only
func EscapeDrawtext(s string) string {
	return escapeWith(s, drawtextEscapes)
}

// EscapeOptionValue escapes a value for use after key= in filter options
func EscapeOptionValue(s string) string {
	return escapeWith(s, optionEscapes)
}

// EscapeGraph escapes a filter argument for embedding in -filter_complex / -vf
func EscapeGraph(s string) string {
	return escapeWith(s, graphEscapes)
}

// EscapeText prepares arbitrary user text for drawtext=text=<here> inside a
// filtergraph. Surrounding whitespace is trimmed.
func EscapeText(s string) string {
	return EscapeGraph(EscapeOptionValue(EscapeDrawtext(strings.TrimSpace(s))))
}

// EscapePath prepares a file path for filename=<here> inside a filtergraph
func EscapePath(p string) string {
	return EscapeGraph(EscapeOptionValue(filepath.ToSlash(p)))
}
