package memory

import "testing"

func TestNormalizeBuyer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ACME Co., Ltd.", "acme_coltd"},
		{"Global Trading", "global_trading"},
		{"  Samsung  Electronics  ", "samsung_electronics"},
		{"무역상사", "무역상사"},
		{"한국 무역", "한국_무역"},
		{"貿易公司", "貿易公司"},
		{"A.B.C", "abc"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
		{"... Ltd", "ltd"},
	}
	for _, tc := range cases {
		if got := NormalizeBuyer(tc.in); got != tc.want {
			t.Errorf("NormalizeBuyer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScopeKeys(t *testing.T) {
	if got := DocScope(42); got != "doc_42" {
		t.Errorf("DocScope = %q", got)
	}
	if got := GenChatScope(7); got != "gen_chat_7" {
		t.Errorf("GenChatScope = %q", got)
	}
	if got := UserScope(3); got != "user_3" {
		t.Errorf("UserScope = %q", got)
	}
	if got := BuyerScope(3, "acme_coltd"); got != "buyer_3_acme_coltd" {
		t.Errorf("BuyerScope = %q", got)
	}
}
