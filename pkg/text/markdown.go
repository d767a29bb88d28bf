package text

import "regexp"

var markdownFeatures = []*regexp.Regexp{
	// headings
	regexp.MustCompile(`(?m)^#{1,6}\s+\S`),

	// fenced code
	regexp.MustCompile("(?m)^(```|~~~)"),

	// bullet or numbered lists
	regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+\S`),

	// links and images
	regexp.MustCompile(`!?\[[^\]]+\]\([^)]+\)`),

	// block quotes
	regexp.MustCompile(`(?m)^>\s+\S`),

	// thematic breaks
	regexp.MustCompile(`(?m)^\s*(-{3,}|\*{3,}|_{3,})\s*$`),

	// emphasis
	regexp.MustCompile(`(\*\*|__)[^*_\n]+(\*\*|__)`),
}

// IsMarkdown reports whether text shows at least two distinct markdown
// features. A single stray '#' or '-' in prose is not enough.
func IsMarkdown(text string) bool {
	var found int

	for _, feature := range markdownFeatures {
		if !feature.MatchString(text) {
			continue
		}

		found++

		if found >= 2 {
			return true
		}
	}

	return false
}
