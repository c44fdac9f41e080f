package dispatch

import "strings"

// SpokenDelimiter is the fixed literal token splitting an oracle or
// capability reply into (formatted text, spoken summary). Capabilities and
// prompt instructions both use this token; it never varies per deployment.
const SpokenDelimiter = "<<<SPOKEN>>>"

// SplitDualFormat splits text on the delimiter. When the delimiter is absent
// (or the spoken half is empty) the spoken summary is synthesized from the
// first sentence of the formatted text with markup-like characters stripped.
func SplitDualFormat(text string) (formatted, spoken string) {
	if i := strings.Index(text, SpokenDelimiter); i >= 0 {
		formatted = strings.TrimSpace(text[:i])
		spoken = strings.TrimSpace(text[i+len(SpokenDelimiter):])
	} else {
		formatted = strings.TrimSpace(text)
	}
	if spoken == "" {
		spoken = SynthesizeSpoken(formatted)
	}
	return formatted, spoken
}

// SynthesizeSpoken derives a short spoken summary: the first sentence of the
// formatted text, stripped of markup-like characters.
func SynthesizeSpoken(formatted string) string {
	sentence := firstSentence(formatted)
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '*', '_', '#', '`', '>', '[', ']', '(', ')', '~', '|':
			return -1
		case '\n', '\t':
			return ' '
		default:
			return r
		}
	}, sentence))
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			return text[:i+1]
		case '\n':
			return text[:i]
		}
	}
	return text
}
