package chat

import "testing"

func TestExtractBuyerName(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{"messrs", "<p>Messrs. ACME Co., Ltd.</p>", "ACME Co., Ltd."},
		{"buyer label", "<td>Buyer: Global Trading GmbH</td>", "Global Trading GmbH"},
		{"to label", "To: Hanwha Corporation\nAddress: Seoul", "Hanwha Corporation"},
		{"to label after tag", "<p>To: Orient Shipping Co.</p>", "Orient Shipping Co."},
		{"mid-sentence to", "Goods shipped to Busan Port under CIF terms.", ""},
		{"mid-sentence to with colon", "The parties agreed to: the schedule below.", ""},
		{"trailing comma", "Buyer: Pacific Imports,", "Pacific Imports"},
		{"no label", "<p>Quantity: 500 MT</p>", ""},
		{"too short", "To: AB", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractBuyerName(tc.html); got != tc.want {
				t.Errorf("ExtractBuyerName(%q) = %q, want %q", tc.html, got, tc.want)
			}
		})
	}
}

func TestExtractBuyerNameStopsAtTag(t *testing.T) {
	got := ExtractBuyerName("<p>Buyer: ACME Industrial<br/>Seller: Kexim</p>")
	if got != "ACME Industrial" {
		t.Errorf("got %q", got)
	}
}
