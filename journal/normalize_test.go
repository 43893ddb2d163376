package journal

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  hello   world  ", "hello world"},
		{"a b", "a b"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"déjà  vu", "déjà vu"}, // accents survive display normalization
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeKeyFolding(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Récolte", "recolte"},
		{"l’argent", "l'argent"},
		{"“citation” et «guillemets»", `"citation" et "guillemets"`},
		{"Théocratie   Seelienne", "theocratie seelienne"},
		{"a  b", "a b"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeKeyVariantsCollide(t *testing.T) {
	variants := []string{
		"Le Maire paie 12 500 Co",
		"le maire PAIE 12 500 co",
		"Le  Maire paie 12 500 Co",
	}
	want := NormalizeKey(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeKey(v); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", v, got, want)
		}
	}
}
