package transcript

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "word_loop_collapses_to_one",
			in:   "mas, mas, mas, mas, pois",
			want: "mas, pois",
		},
		{
			name: "three_repeats_kept",
			in:   "não, não, não, acabou",
			want: "não, não, não, acabou",
		},
		{
			name: "word_loop_keeps_first_casing",
			in:   "Sim sim sim sim certo",
			want: "Sim certo",
		},
		{
			name: "phrase_loop_collapses_to_one",
			in:   "e depois, e depois, e depois, e depois",
			want: "e depois",
		},
		{
			name: "phrase_loop_keeps_trailing_text",
			in:   "e depois, e depois, e depois, e depois, fim",
			want: "e depois, fim",
		},
		{
			name: "plain_text_untouched",
			in:   "O depoente afirmou que chegou às dez horas.",
			want: "O depoente afirmou que chegou às dez horas.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "word_loop_inside_sentence",
			in:   "ele disse que que que que que viu tudo",
			want: "ele disse que viu tudo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"mas, mas, mas, mas, pois",
		"e depois, e depois, e depois, e depois",
		"texto normal sem repetições",
		"sim sim sim sim sim sim sim sim",
		"a testemunha, a testemunha, a testemunha, a testemunha disse",
		"",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
