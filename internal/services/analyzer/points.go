package analyzer

import "strings"

// DefaultMaxPoints caps the extracted analysis points when no limit is
// configured
const DefaultMaxPoints = 6

// ExtractPoints turns raw model output into clean plain-language points.
// Stages: strip markup characters, split into lines, drop blanks and short
// all-caps headings, strip leading bullet or numbering tokens, cap the
// count. The function is deterministic and idempotent: running it over its
// own joined output changes nothing.
func ExtractPoints(raw string, maxPoints int) []string {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	cleaned := stripMarkup(raw)
	points := []string{}

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = strings.TrimSpace(stripListPrefix(line))
		if line == "" {
			continue
		}

		if isHeading(line) {
			continue
		}

		points = append(points, line)
		if len(points) >= maxPoints {
			break
		}
	}

	return points
}

// stripMarkup removes markdown-ish characters anywhere in the text
func stripMarkup(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '*', '#', '>', '`', '_':
			return -1
		}
		return r
	}, s)
}

// stripListPrefix removes leading bullet markers and "1." / "1)" style
// numbering, repeating until the line is stable so stacked markers like
// "- 2) text" fully disappear. Bare leading numbers that are part of the
// content ("200 EMA holding") are left alone.
func stripListPrefix(s string) string {
	for {
		trimmed := strings.TrimSpace(s)

		if len(trimmed) > 0 && (trimmed[0] == '-' || strings.HasPrefix(trimmed, "•")) {
			if trimmed[0] == '-' {
				s = trimmed[1:]
			} else {
				s = strings.TrimPrefix(trimmed, "•")
			}
			continue
		}

		i := 0
		for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
			i++
		}
		if i > 0 && i < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')') {
			s = trimmed[i+1:]
			continue
		}

		return trimmed
	}
}

// isHeading reports whether the line is a short fully-uppercase heading
// like "SUPPORT / RESISTANCE:". Lines with no letters are not headings.
func isHeading(s string) bool {
	return len(s) < 30 && s == strings.ToUpper(s) && s != strings.ToLower(s)
}
