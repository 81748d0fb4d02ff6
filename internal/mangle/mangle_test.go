package mangle

import "testing"

func TestName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Chrom Pos", "chrom_pos"},
		{"  Leading/Trailing  ", "leading_trailing"},
		{"col__with___runs", "col_with_runs"},
		{"ALLCAPS", "allcaps"},
		{"trailing_", "trailing"},
		{"100%", "100"},
	}
	for _, c := range cases {
		if got := Name(c.in); got != c.want {
			t.Errorf("Name(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNameIdempotent(t *testing.T) {
	inputs := []string{"Chrom Pos", "a!!b??c", "_leading", "trailing_", "", "___"}
	for _, in := range inputs {
		once := Name(in)
		twice := Name(once)
		if once != twice {
			t.Errorf("Name not idempotent for %q: Name=%q, Name(Name)=%q", in, once, twice)
		}
	}
}
