package names

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Aaron Judge", "Aaron Judge"},
		{"trims and collapses", "  Aaron   Judge \t", "Aaron Judge"},
		{"non-breaking space", "Aaron\u00a0\u00a0Judge", "Aaron Judge"},
		{"single position", "Aaron Judge RF", "Aaron Judge"},
		{"chained position", "Gleyber Torres 2B-SS", "Gleyber Torres"},
		{"catcher first base", "Jose Trevino C-1B", "Jose Trevino"},
		{"pinch hitter", "Oswaldo Cabrera PH-LF", "Oswaldo Cabrera"},
		{"win decision", "Gerrit Cole, W (10-2)", "Gerrit Cole"},
		{"hold and blown save", "Clay Holmes, H (5), BS (2)", "Clay Holmes"},
		{"save without space", "Clay Holmes, S(20)", "Clay Holmes"},
		{"suffix with position", "Vladimir Guerrero Jr. 1B", "Vladimir Guerrero Jr."},
		{"suffix with chained position", "Jazz Chisholm Jr. 2B-3B", "Jazz Chisholm Jr."},
		{"roman suffix kept", "Ken Griffey II", "Ken Griffey II"},
		{"roman suffix with position", "Ken Griffey III RF", "Ken Griffey III"},
		{"sr suffix alone", "Cal Ripken Sr.", "Cal Ripken Sr."},
		{"position then decision", "Shohei Ohtani, L (2-3) P", "Shohei Ohtani"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_AccentsCompareAcrossForms(t *testing.T) {
	composed := "Ronald Acu\u00f1a Jr."
	decomposed := "Ronald Acun\u0303a Jr. CF"

	if Normalize(composed) != Normalize(decomposed) {
		t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q; want equal",
			composed, Normalize(composed), decomposed, Normalize(decomposed))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Aaron Judge RF",
		"Jazz Chisholm Jr. 2B-3B",
		"Gerrit Cole, W (10-2)",
		"Shohei Ohtani, L (2-3) P",
		"Ken Griffey II",
		"Jos\u00e9 Ram\u00edrez 3B",
		"   Luis   Severino , L (1-1)",
		"A",
		"X Y Z",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
