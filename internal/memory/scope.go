package memory

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	TypeDocSession     = "doc_session"
	TypeGenChatSession = "gen_chat_session"
	TypeUserPreference = "user_preference"
	TypeBuyerMemo      = "buyer_memo"
)

// Scope keys partition the memory collection. Items are only ever read
// and deleted through their scope key.
func DocScope(docID int64) string         { return fmt.Sprintf("doc_%d", docID) }
func GenChatScope(genChatID int64) string { return fmt.Sprintf("gen_chat_%d", genChatID) }
func UserScope(userID int64) string       { return fmt.Sprintf("user_%d", userID) }

func BuyerScope(userID int64, buyerNorm string) string {
	return fmt.Sprintf("buyer_%d_%s", userID, buyerNorm)
}

// NormalizeBuyer folds a counterparty name into a stable scope token:
// lowercase, word gaps become single underscores, everything outside
// [a-z0-9_] and CJK is stripped. A gap only counts as a word boundary
// when the character before it survives normalization, so
// "ACME Co., Ltd." becomes "acme_coltd". Empty output means the name is
// unusable as a scope.
func NormalizeBuyer(name string) string {
	var b strings.Builder
	var prev rune
	pendingSep := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if keepRune(prev) {
				pendingSep = true
			}
			prev = r
			continue
		}
		if keepRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteRune('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	return strings.Trim(b.String(), "_")
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= '가' && r <= '힣':
		return true
	case unicode.Is(unicode.Han, r):
		return true
	}
	return false
}
