package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)

	replacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u00a0", " ",
		"\u2028", "\n",
		"\u2029", "\n\n",
		"\u200b", "",
		"\ufeff", "",
	)
)

// Normalize prepares scraped text for narration. Line endings are unified,
// runs of spaces inside a line collapse to one, control characters are
// dropped and paragraphs end up separated by exactly one blank line.
func Normalize(text string) string {
	text = replacer.Replace(text)

	lines := strings.Split(text, "\n")

	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if r == '\t' {
				return ' '
			}

			if unicode.IsControl(r) {
				return -1
			}

			return r
		}, line)

		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
