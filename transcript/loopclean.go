package transcript

import (
	"strings"
	"unicode"
)

// minLoopRepeats is the repetition count at which a token or phrase is
// treated as a generation loop rather than deliberate emphasis.
const minLoopRepeats = 4

const (
	minLoopPhraseLen = 5
	maxLoopPhraseLen = 50
)

// Clean removes repetition loops from model-generated text: a single word
// repeated minLoopRepeats+ times (ignoring whitespace and punctuation in
// between) collapses to one occurrence, and likewise for a short phrase of
// minLoopPhraseLen..maxLoopPhraseLen characters. The word pass runs before
// the phrase pass so a short stutter is fixed without being swallowed into
// an unrelated phrase match. Clean is idempotent; it is applied at every
// point text enters the pipeline, often on overlapping input.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	prev := text
	// Each pass strictly shrinks the text when it changes anything, so the
	// fixpoint is reached quickly; the bound is a safety net.
	for i := 0; i < 8; i++ {
		next := collapsePhraseLoops(collapseWordLoops(prev))
		if next == prev {
			break
		}
		prev = next
	}
	return prev
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isLoopSeparatorRune reports whether r may appear between repetitions of a
// looped token without breaking the run.
func isLoopSeparatorRune(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', '.', ';', ':', '!', '?', '…', '-', '–', '—':
		return true
	}
	return false
}

type wordToken struct {
	word string
	sep  string
}

// collapseWordLoops rewrites runs of minLoopRepeats+ identical words
// (case-insensitive, separated only by whitespace/punctuation) as a single
// occurrence followed by the separator of the last repetition.
func collapseWordLoops(s string) string {
	var tokens []wordToken
	var prefix strings.Builder

	runes := []rune(s)
	i := 0
	for i < len(runes) && !isWordRune(runes[i]) {
		prefix.WriteRune(runes[i])
		i++
	}
	for i < len(runes) {
		start := i
		for i < len(runes) && isWordRune(runes[i]) {
			i++
		}
		word := string(runes[start:i])
		start = i
		for i < len(runes) && !isWordRune(runes[i]) {
			i++
		}
		tokens = append(tokens, wordToken{word: word, sep: string(runes[start:i])})
	}

	var b strings.Builder
	b.WriteString(prefix.String())
	idx := 0
	for idx < len(tokens) {
		run := 1
		for idx+run < len(tokens) &&
			strings.EqualFold(tokens[idx+run].word, tokens[idx].word) &&
			separatorOnly(tokens[idx+run-1].sep) {
			run++
		}
		if run >= minLoopRepeats {
			b.WriteString(tokens[idx].word)
			b.WriteString(tokens[idx+run-1].sep)
		} else {
			for k := idx; k < idx+run; k++ {
				b.WriteString(tokens[k].word)
				b.WriteString(tokens[k].sep)
			}
		}
		idx += run
	}
	return b.String()
}

func separatorOnly(sep string) bool {
	for _, r := range sep {
		if !isLoopSeparatorRune(r) {
			return false
		}
	}
	return true
}

// collapsePhraseLoops rewrites minLoopRepeats+ consecutive occurrences of
// the same short phrase (exact up to case, separated only by
// whitespace/punctuation) as a single occurrence. Go's RE2 engine has no
// backreferences, so this is an explicit scan rather than a substitution.
func collapsePhraseLoops(s string) string {
	runes := []rune(s)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		collapsed := false
		for length := minLoopPhraseLen; length <= maxLoopPhraseLen && i+length <= len(runes); length++ {
			phrase := runes[i : i+length]
			if !phraseHasContent(phrase) {
				continue
			}
			count := 1
			end := i + length
			for {
				k := end
				for k < len(runes) && isLoopSeparatorRune(runes[k]) {
					k++
				}
				if k+length <= len(runes) && runesEqualFold(runes[k:k+length], phrase) {
					count++
					end = k + length
					continue
				}
				break
			}
			if count >= minLoopRepeats {
				b.WriteString(string(phrase))
				i = end
				collapsed = true
				break
			}
		}
		if !collapsed {
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}

func phraseHasContent(phrase []rune) bool {
	for _, r := range phrase {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func runesEqualFold(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
			return false
		}
	}
	return true
}
