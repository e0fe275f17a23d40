package attendance

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "alice", "alice"},
		{"surrounding whitespace", "  alice  ", "alice"},
		{"inner whitespace collapsed", "jan  novak", "jan novak"},
		{"diacritics removed", "Jiří Novák", "Jiri Novak"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"case preserved", "Alice Smith", "Alice Smith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	if got := RemoveDiacritics("José García"); got != "Jose Garcia" {
		t.Errorf("RemoveDiacritics = %q, want %q", got, "Jose Garcia")
	}
}
