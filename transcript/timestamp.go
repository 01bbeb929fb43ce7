package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hmsPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})`)
	msPattern     = regexp.MustCompile(`(\d{1,3}):(\d{2})`)
	pagePattern   = regexp.MustCompile(`(?i)(?:p[áa]g(?:ina)?\.?|page)\s*(\d+)`)
	digitsPattern = regexp.MustCompile(`\d+`)
)

// ParsePosition converts a textual time or page reference into its canonical
// numeric position: total seconds for "HH:MM:SS"/"MM:SS", the page number
// for "Pág N"/"Page N". The value doubles as an ordering key and an
// audio-seek target; callers must not assume seconds semantics for
// page-based documents. Input without any digits yields 0.
func ParsePosition(display string) int {
	s := strings.TrimSpace(display)
	if m := hmsPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		return h*3600 + min*60 + sec
	}
	if m := msPattern.FindStringSubmatch(s); m != nil {
		min, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		return min*60 + sec
	}
	if m := pagePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	// Degenerate references like "Parte 3" still carry an ordinal.
	if m := digitsPattern.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

// FormatSeconds renders a position in seconds as the canonical display
// string: "MM:SS", or "HH:MM:SS" once an hour is reached.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// PageLabel renders a page number as the canonical display string.
func PageLabel(n int) string {
	return fmt.Sprintf("Pág %d", n)
}
