// internal/util/util_test.go
package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-ten!", 12, "exactly-ten!"},
		{"a longer string", 8, "a longer…"},
		{"héllo wörld", 5, "héllo…"},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.input, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

func TestMax(t *testing.T) {
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Fatal("Max failed")
	}
}
