package fetcher

import "strings"

// blockSignatures are substrings that only appear on anti-automation pages:
// captcha iframe markers and known anti-bot vendor domains. The list is
// deliberately short; a false positive costs one observation, a false
// negative records a bogus price.
var blockSignatures = []string{
	"servicepipe.ru",
	"id_captcha_frame_div",
	"/exhkqyad",
}

// IsBlocked reports whether html looks like an anti-bot wall instead of real
// content. A blank page counts as blocked: it carries no price either way
// and is logged under the same label.
func IsBlocked(html string) bool {
	if strings.TrimSpace(html) == "" {
		return true
	}
	lower := strings.ToLower(html)
	for _, sig := range blockSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
