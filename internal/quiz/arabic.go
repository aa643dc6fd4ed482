package quiz

import "strings"

// Arabic combining marks stripped before comparing or displaying the quiz
// answer: tanween, harakat, shadda, sukun (U+064B..U+065F) and the
// superscript alef (U+0670).
func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x064B && r <= 0x065F {
			continue
		}
		if r == 0x0670 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeAlef folds hamza and madda variants onto the bare alef.
func normalizeAlef(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'أ', 'إ', 'آ', 'ٱ':
			return 'ا'
		default:
			return r
		}
	}, s)
}

// NormalizeWord prepares a verse word for use as a quiz answer.
func NormalizeWord(s string) string {
	return normalizeAlef(stripDiacritics(s))
}
