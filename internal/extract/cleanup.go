package extract

import (
	"regexp"
	"strings"
)

var (
	datelikeRe  = regexp.MustCompile(`\d+[/\-]\d+[/\-]\d+`)
	currencyRe  = regexp.MustCompile(`(?i)\b(AED|DHS)\b`)
	letterRe    = regexp.MustCompile(`[a-zA-Z]`)
	innerWSRe   = regexp.MustCompile(`[ \t]+`)
	blankRunsRe = regexp.MustCompile(`\n{2,}`)
)

// CleanText strips layout noise from extracted statement text: very
// short lines and lines made only of symbols or digits are dropped,
// unless they look like a date or carry a currency marker. Whitespace
// runs collapse within lines, blank-line runs collapse to one newline.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if keepLine(trimmed) {
			kept = append(kept, innerWSRe.ReplaceAllString(trimmed, " "))
		} else {
			kept = append(kept, "")
		}
	}

	cleaned := strings.Join(kept, "\n")
	cleaned = blankRunsRe.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

// keepLine decides whether a trimmed line carries statement content.
func keepLine(line string) bool {
	if line == "" {
		return false
	}

	// Dates and currency markers survive even when short or digit-only.
	if datelikeRe.MatchString(line) || currencyRe.MatchString(line) {
		return true
	}

	if len(line) <= 2 {
		return false
	}

	// Lines with no letters are separator art or page furniture.
	return letterRe.MatchString(line)
}
