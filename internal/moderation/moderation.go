// Package moderation screens proposal text for off-platform contact
// solicitation before anything is persisted.
package moderation

import "regexp"

// The patterns trade precision for recall: a phone-shaped number inside
// unrelated text still blocks. False positives are accepted, false negatives
// are not.
var (
	// nine or more digits, each followed by at most one common separator,
	// with an optional country code and parentheses
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[\s.-]?)?\(?(\d\)?[\s.-]?){9,}`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	urlPattern = regexp.MustCompile(`(?i)(https?://|www\.)\S+|\b[a-z0-9-]+\.(com|net|org|io|co|in|info|biz)\b`)
)

// ContainsContactInfo reports whether the text carries a phone-number-like
// digit sequence, an email address, or a URL/domain. Pure and stateless.
func ContainsContactInfo(text string) bool {
	if text == "" {
		return false
	}

	return phonePattern.MatchString(text) ||
		emailPattern.MatchString(text) ||
		urlPattern.MatchString(text)
}
