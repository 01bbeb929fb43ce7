package analysis

import (
	"strings"
	"unicode"

	"evidence-agent/transcript"

	"go.uber.org/zap"
)

// Context window around a matched testimony segment: one utterance of
// lead-in, several of follow-up, so the reader can judge the exchange and
// not an isolated line. Documents get no window; the model already
// summarizes per page and neighboring pages are unrelated content.
const (
	windowBefore = 1
	windowAfter  = 6
)

// Resolver maps citation markers back to concrete evidence segments.
// Resolution is pure: it never mutates the corpus, and the same corpus
// snapshot always resolves the same way.
type Resolver struct {
	logger *zap.Logger
	// toleranceSeconds is the slack allowed between a cited timestamp and a
	// testimony segment's position.
	toleranceSeconds int
}

func NewResolver(logger *zap.Logger, toleranceSeconds int) *Resolver {
	if toleranceSeconds <= 0 {
		toleranceSeconds = 2
	}
	return &Resolver{logger: logger, toleranceSeconds: toleranceSeconds}
}

// Resolve maps one (fileRef, timestamp) pair to a citation, or nil when the
// file reference matches nothing; the caller drops the citation and the
// report proceeds with fewer citations than claimed.
//
// The file match is a case-insensitive substring test in either direction:
// the model echoes file names, often shortened or slightly altered, never
// IDs. First match in corpus order wins.
func (r *Resolver) Resolve(fileRef, timestamp string, corpus Corpus, isDocument bool) *Citation {
	content := MatchFile(fileRef, corpus)
	if content == nil {
		if r.logger != nil {
			r.logger.Debug("Citation references unknown file, dropping",
				zap.String("file_ref", fileRef),
				zap.String("timestamp", timestamp))
		}
		return nil
	}
	if len(content.Segments) == 0 {
		return nil
	}

	target := transcript.ParsePosition(timestamp)

	var excerpt string
	var matched transcript.Segment
	if isDocument {
		matched = nearestSegment(content.Segments, target)
		excerpt = matched.Text
	} else {
		idx := indexWithinTolerance(content.Segments, target, r.toleranceSeconds)
		if idx < 0 {
			// No segment close enough; fall back to the nearest utterance
			// instead of losing the citation.
			matched = nearestSegment(content.Segments, target)
			excerpt = matched.Text
		} else {
			matched = content.Segments[idx]
			excerpt = windowText(content.Segments, idx)
		}
	}

	display := transcript.FormatSeconds(target)
	if isDocument {
		display = transcript.PageLabel(target)
	}

	return &Citation{
		FileID:    content.FileID,
		FileName:  content.FileName,
		Timestamp: display,
		Seconds:   target,
		Text:      transcript.Clean(excerpt),
	}
}

// ResolveAll resolves one citation per timestamp against the same file.
func (r *Resolver) ResolveAll(fileRef string, timestamps []string, corpus Corpus, isDocument bool) []Citation {
	var citations []Citation
	for _, ts := range timestamps {
		if c := r.Resolve(fileRef, ts, corpus, isDocument); c != nil {
			citations = append(citations, *c)
		}
	}
	return citations
}

// MatchFile finds the first corpus entry whose file name contains fileRef or
// is contained by it, case-insensitively. When no substring match exists, a
// second pass accepts the first name the normalized reference is an
// in-order subsequence of, which covers model shorthand like "dep1" for
// "deposito1.mp3". First match in corpus order wins in both passes. Callers
// that need the file's category before resolving use this directly.
func MatchFile(fileRef string, corpus Corpus) *transcript.ProcessedContent {
	ref := strings.ToLower(strings.TrimSpace(fileRef))
	if ref == "" {
		return nil
	}
	for i := range corpus {
		name := strings.ToLower(corpus[i].FileName)
		if strings.Contains(name, ref) || strings.Contains(ref, name) {
			return &corpus[i]
		}
	}
	normRef := normalizeRef(ref)
	if len(normRef) < 3 {
		return nil
	}
	for i := range corpus {
		if isSubsequence(normRef, normalizeRef(strings.ToLower(corpus[i].FileName))) {
			return &corpus[i]
		}
	}
	return nil
}

// normalizeRef keeps only lowercase letters and digits.
func normalizeRef(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isSubsequence(needle, haystack string) bool {
	n := []rune(needle)
	i := 0
	for _, r := range haystack {
		if i < len(n) && n[i] == r {
			i++
		}
	}
	return i == len(n)
}

func indexWithinTolerance(segments []transcript.Segment, target, tolerance int) int {
	for i, seg := range segments {
		if abs(seg.Seconds-target) <= tolerance {
			return i
		}
	}
	return -1
}

func nearestSegment(segments []transcript.Segment, target int) transcript.Segment {
	best := segments[0]
	bestDiff := abs(best.Seconds - target)
	for _, seg := range segments[1:] {
		if d := abs(seg.Seconds - target); d < bestDiff {
			best = seg
			bestDiff = d
		}
	}
	return best
}

func windowText(segments []transcript.Segment, idx int) string {
	lo := idx - windowBefore
	if lo < 0 {
		lo = 0
	}
	hi := idx + windowAfter
	if hi > len(segments)-1 {
		hi = len(segments) - 1
	}
	parts := make([]string, 0, hi-lo+1)
	for _, seg := range segments[lo : hi+1] {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
