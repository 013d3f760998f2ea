package chat

import (
	"regexp"
	"strings"
)

// Counterparty labels as they appear on trade documents. The To label
// only counts at the start of a line or right after a tag, with an
// explicit colon, so a mid-sentence "to" never becomes a buyer.
var buyerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Messrs[.:\s]+([^\n<]+)`),
	regexp.MustCompile(`(?i)Buyer[:\s]+([^\n<]+)`),
	regexp.MustCompile(`(?i)(?:^|[>\n])\s*To\s*:\s*([^\n<]+)`),
}

var trailingPunct = regexp.MustCompile(`[\s,;:]+$`)

// ExtractBuyerName scans document HTML for a counterparty name next to a
// To:/Buyer:/Messrs. label. Matches outside (2, 100) characters are
// discarded, so stray matches on short tokens or whole paragraphs never
// become a memory scope.
func ExtractBuyerName(html string) string {
	for _, pattern := range buyerPatterns {
		m := pattern.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		name := trailingPunct.ReplaceAllString(strings.TrimSpace(m[1]), "")
		if n := len([]rune(name)); n > 2 && n < 100 {
			return name
		}
	}
	return ""
}
