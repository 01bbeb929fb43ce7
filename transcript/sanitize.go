package transcript

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// lineMarkerPattern classifies a line as starting with a position marker.
// Priority order inside the alternation: HH:MM:SS, then MM:SS, then a page
// reference. The marker may be wrapped in brackets, parens or asterisks and
// followed by stray punctuation before the utterance text.
var lineMarkerPattern = regexp.MustCompile(`^[\s\[\(\*]*(?:(\d{1,2}):(\d{2}):(\d{2})|(\d{1,3}):(\d{2})|(?i:p[áa]g(?:ina)?\.?|page)[\s.]*(\d+))[\]\)\*\s:.\-–—]*(.*)$`)

// inlineMarkerPattern finds bracketed markers anywhere in the text, used to
// break up physical lines that carry several timestamped utterances.
var inlineMarkerPattern = regexp.MustCompile(`\[(?:\d{1,2}:)?\d{1,3}:\d{2}\]|\[(?i:p[áa]g(?:ina)?\.?|page)\s*\d+\]`)

var blankRunPattern = regexp.MustCompile(`\n[ \t]*\n+`)

// hallucinationBoilerplate lists substrings that models insert without any
// basis in the audio, mostly subtitle credits learned from training data.
// Lines containing them never become segments.
var hallucinationBoilerplate = []string{
	"legendas pela comunidade",
	"legendado pela comunidade",
	"amara.org",
	"transcrição automática",
	"inaudível",
	"inaudivel",
	"[música]",
	"subtitles by",
}

// Sanitizer turns raw model-generated transcription text into an ordered
// segment sequence.
type Sanitizer struct {
	logger *zap.Logger
	// enforceMonotonic discards the whole transcription on a backward time
	// jump, treating it as hallucinated output. Off by default: segment
	// order follows marker order in the input, monotonic or not.
	enforceMonotonic bool
}

func NewSanitizer(logger *zap.Logger, enforceMonotonic bool) *Sanitizer {
	return &Sanitizer{
		logger:           logger,
		enforceMonotonic: enforceMonotonic,
	}
}

// Sanitize converts one blob of raw transcription/extraction text into
// segments. It never fails: input without any recognizable marker yields an
// empty slice, and the caller decides on a fallback (see FallbackSegments).
//
// Lines that match a marker open a new segment; non-matching lines are
// continuations appended to the most recently accepted segment. Boilerplate
// lines are discarded outright and leave the continuation state untouched.
func (s *Sanitizer) Sanitize(raw string) []Segment {
	normalized := inlineMarkerPattern.ReplaceAllString(raw, "\n$0")
	normalized = blankRunPattern.ReplaceAllString(normalized, "\n")

	var segments []Segment
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 {
			continue
		}

		m := lineMarkerPattern.FindStringSubmatch(line)
		if m == nil {
			if len(segments) == 0 {
				continue
			}
			// A line opening with "[" is almost always a malformed marker,
			// not speech; gluing it onto the previous utterance would
			// corrupt it.
			if strings.HasPrefix(line, "[") && len(line) > 1 {
				continue
			}
			if isBoilerplate(line) {
				continue
			}
			cleaned := Clean(line)
			if cleaned == "" {
				continue
			}
			last := &segments[len(segments)-1]
			if last.Text == "" {
				last.Text = cleaned
			} else {
				last.Text += " " + cleaned
			}
			continue
		}

		seconds, display := positionFromMatch(m)
		if s.enforceMonotonic && len(segments) > 0 && seconds < segments[len(segments)-1].Seconds {
			s.logger.Warn("Backward time jump in transcription, discarding as hallucinated",
				zap.String("at", display),
				zap.Int("previous_seconds", segments[len(segments)-1].Seconds))
			return nil
		}

		text := strings.TrimSpace(m[7])
		if isBoilerplate(text) {
			continue
		}
		text = Clean(text)
		if text != "" && len(segments) > 0 && text == segments[len(segments)-1].Text {
			// Full-line stutter: the model re-emitted the previous utterance
			// under a new timestamp.
			continue
		}
		segments = append(segments, Segment{Timestamp: display, Seconds: seconds, Text: text})
	}

	return dropEmptySegments(segments)
}

func positionFromMatch(m []string) (int, string) {
	switch {
	case m[1] != "":
		seconds := ParsePosition(m[1] + ":" + m[2] + ":" + m[3])
		return seconds, FormatSeconds(seconds)
	case m[4] != "":
		seconds := ParsePosition(m[4] + ":" + m[5])
		return seconds, FormatSeconds(seconds)
	default:
		page := ParsePosition("Pág " + m[6])
		return page, PageLabel(page)
	}
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range hallucinationBoilerplate {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func dropEmptySegments(segments []Segment) []Segment {
	out := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) != "" {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
