package resolve

import "testing"

func TestOverlapScore(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "ないでください", "ないでください", 6},
		{"identical with quotes", "「ないでください」", "ないでください", 6},
		{"wave dash ignored", "〜ないでください", "ないでください", 6},
		{"disjoint", "abc", "xyz", -6},
		{"empty both", "", "", 0},
		{"one empty", "abc", "", -3},
		{"partial", "abcd", "cdef", -2},
		{"duplicates collapse", "aabb", "ab", 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := OverlapScore(c.a, c.b); got != c.want {
				t.Fatalf("OverlapScore(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestOverlapScoreSymmetry(t *testing.T) {
	a, b := "ても構いません", "てもいいです"
	if OverlapScore(a, b) != OverlapScore(b, a) {
		t.Fatalf("score not symmetric")
	}
}

func TestStripMarks(t *testing.T) {
	if got := stripMarks("「〜て・も、いい？」"); got != "てもいい" {
		// ・ is punctuation, 〜 and quotes likewise.
		t.Fatalf("stripMarks = %q", got)
	}
}
