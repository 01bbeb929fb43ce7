package transcript

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "hours_minutes_seconds", in: "01:02:03", want: 3723},
		{name: "minutes_seconds", in: "05:30", want: 330},
		{name: "bracketed", in: "[00:10]", want: 10},
		{name: "page_pt", in: "Pág 4", want: 4},
		{name: "page_pt_unaccented", in: "pag 4", want: 4},
		{name: "page_en", in: "Page 12", want: 12},
		{name: "pagina_full", in: "Página 7", want: 7},
		{name: "bare_ordinal", in: "Parte 3", want: 3},
		{name: "garbage", in: "garbage", want: 0},
		{name: "empty", in: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePosition(tt.in)
			if got != tt.want {
				t.Errorf("ParsePosition(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{3723, "01:02:03"},
		{330, "05:30"},
		{1, "00:01"},
		{0, "00:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	for _, seconds := range []int{0, 59, 60, 330, 3599, 3723, 7325} {
		display := FormatSeconds(seconds)
		if got := ParsePosition(display); got != seconds {
			t.Errorf("ParsePosition(FormatSeconds(%d)) = %d via %q", seconds, got, display)
		}
	}
	if got := ParsePosition(PageLabel(4)); got != 4 {
		t.Errorf("ParsePosition(PageLabel(4)) = %d, want 4", got)
	}
}
