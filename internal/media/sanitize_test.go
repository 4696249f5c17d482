package media

import "testing"

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Video: Part #1!", "My_Video_Part_1"},
		{"plain", "plain"},
		{"  spaced  out  ", "spaced_out"},
		{"___already___collapsed___", "already_collapsed"},
		{"", ""},
		{"!!!", ""},
		{"Ünïcödé tïtle", "n_c_d_t_tle"},
		{"2024-01-02 Episode 5", "2024_01_02_Episode_5"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"My Video: Part #1!",
		"Episode 12 — the long one",
		"file.name.with.dots",
	}
	for _, in := range inputs {
		once := SanitizeTitle(in)
		twice := SanitizeTitle(once)
		if once != twice {
			t.Errorf("SanitizeTitle not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
