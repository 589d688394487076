package intent

import (
	"regexp"
	"strings"
)

var (
	courseCodeRE = regexp.MustCompile(`(?i)\b(cs|cmpe|se|engr|ise|math)\s*-?\s*(\d{2,3}[a-z]?)\b`)
	lastNameRE   = regexp.MustCompile(`(?i)last name (?:is |starts? with )?([a-z][a-z]*)`)
	dateRE       = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}\b|\b(spring|summer|fall|winter)\s+\d{4}\b|\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
)

// ExtractCourseCodes finds course codes in text, normalized to "DEPT NUM" form.
func ExtractCourseCodes(text string) []string {
	matches := courseCodeRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		code := strings.ToUpper(m[1]) + " " + strings.ToUpper(m[2])
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}

// extractEntities pulls course codes, last names, and date expressions
// out of an utterance.
func extractEntities(text string) Entities {
	e := Entities{CourseCodes: ExtractCourseCodes(text)}

	if m := lastNameRE.FindStringSubmatch(text); m != nil {
		e.LastName = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	}
	if m := dateRE.FindString(text); m != "" {
		e.Date = m
	}
	return e
}
