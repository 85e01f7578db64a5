package tracking

import "testing"

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name     string
		visitor  Visitor
		url      string
		expected string
	}{
		{
			name:     "Token Only",
			visitor:  Visitor{Token: "tok123"},
			url:      "https://site.test/page",
			expected: `{"channel":"7","no_duplicates":false,"data":[{"identity":{"token":"tok123"},"events":[{"verb":"pbr","items":{"url":"https://site.test/page"}}]}]}`,
		},
		{
			name:     "Token And PV UID",
			visitor:  Visitor{Token: "tok123", PVUID: "abc123"},
			url:      "https://site.test/page",
			expected: `{"channel":"7","no_duplicates":false,"data":[{"identity":{"token":"tok123","pv_uid":"abc123"},"events":[{"verb":"pbr","items":{"url":"https://site.test/page"}}]}]}`,
		},
		{
			name:     "No HTML Escaping",
			visitor:  Visitor{Token: "t"},
			url:      "https://site.test/a?x=1&y=<2>",
			expected: `{"channel":"7","no_duplicates":false,"data":[{"identity":{"token":"t"},"events":[{"verb":"pbr","items":{"url":"https://site.test/a?x=1&y=<2>"}}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := EncodePayload(BuildPayload("7", tt.visitor, tt.url))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(body) != tt.expected {
				t.Errorf("EncodePayload() =\n%s\nwant\n%s", body, tt.expected)
			}
		})
	}
}

func TestEncodePayload_Reproducible(t *testing.T) {
	payload := BuildPayload("7", Visitor{Token: "tok", PVUID: "pv"}, "https://site.test/")

	first, _ := EncodePayload(payload)
	second, _ := EncodePayload(payload)
	if string(first) != string(second) {
		t.Errorf("Expected byte-identical encodings, got %s and %s", first, second)
	}
}
