package quiz

import "testing"

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fatha and kasra removed", "بِسْمِ", "بسم"},
		{"shadda and tanween removed", "رَبِّ", "رب"},
		{"superscript alef removed", "ٱلرَّحْمَٰنِ", "ٱلرحمن"},
		{"bare text unchanged", "بسم", "بسم"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripDiacritics(tt.in); got != tt.want {
				t.Errorf("stripDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAlef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"أحمد", "احمد"},
		{"إلى", "الى"},
		{"آمن", "امن"},
		{"ٱلله", "الله"},
		{"بسم", "بسم"},
	}

	for _, tt := range tests {
		if got := normalizeAlef(tt.in); got != tt.want {
			t.Errorf("normalizeAlef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeWord(t *testing.T) {
	if got := NormalizeWord("ٱلرَّحْمَٰنِ"); got != "الرحمن" {
		t.Errorf("NormalizeWord = %q, want %q", got, "الرحمن")
	}
}
