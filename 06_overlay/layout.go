package overlay

import "strings"

// wrapLines greedily packs words into lines no wider than maxW. A word wider
// than maxW gets a line of its own and overflows.
func wrapLines(text string, maxW float64, measure func(string) float64) []string {
	var lines []string
	cur := ""
	for _, w := range strings.Fields(text) {
		test := w
		if cur != "" {
			test = cur + " " + w
		}
		if measure(test) <= maxW {
			cur = test
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
