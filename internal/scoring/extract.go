package scoring

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

// ContainsContactInfo reports whether the message already carries
// contact details (an email address, a phone number, or language
// offering them), so the assistant should not ask again.
func ContainsContactInfo(message string) bool {
	if emailPattern.MatchString(message) || phonePattern.MatchString(message) {
		return true
	}
	msg := strings.ToLower(message)
	for _, term := range []string{"my email", "my phone", "my number", "reach me", "call me", "contact me at"} {
		if strings.Contains(msg, term) {
			return true
		}
	}
	return false
}

// ExtractInfo pulls free-form facts out of a user message for the
// session's extracted-info map: contact details, a detected industry,
// and a voice preference. Keys already present are overwritten only
// when a new value was found.
func ExtractInfo(message string) map[string]string {
	info := map[string]string{}
	msg := strings.ToLower(message)

	if email := emailPattern.FindString(message); email != "" {
		info["email"] = email
	}
	if phone := phonePattern.FindString(message); phone != "" {
		info["phone"] = phone
	}
	for _, industry := range industryTerms {
		if strings.Contains(msg, industry) {
			info["industry"] = industry
			break
		}
	}
	if strings.Contains(msg, "voice") || strings.Contains(msg, "speak") {
		info["prefers_voice"] = "true"
	}

	return info
}
